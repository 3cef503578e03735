package csvfile

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/pharmadb/internal/catalog"
)

// RenderSample returns the sample CSV for a list type. The output is the
// header line followed by each sample row, joined with newlines. Repeated
// calls return identical text.
func RenderSample(listType string) (string, error) {
	lt, err := catalog.LookupListType(listType)
	if err != nil {
		return "", err
	}
	return Serialize(lt.Template.Headers, lt.Template.SampleRows), nil
}

// SampleFilename returns the download name for a list type's template.
func SampleFilename(listType string) (string, error) {
	lt, err := catalog.LookupListType(listType)
	if err != nil {
		return "", err
	}
	return lt.Template.Filename, nil
}

// Serialize joins headers and rows with commas and newlines.
// Values are written verbatim; see the package doc for the quoting caveat.
func Serialize(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}

// Download writes text as a file attachment. Write failures are logged and
// otherwise ignored since the client has already received the headers.
func Download(w http.ResponseWriter, text, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Debug("csv download write failed", "filename", filename, "error", err)
	}
}

// SaveFile writes text to dir/filename and returns the full path.
func SaveFile(dir, filename, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}
