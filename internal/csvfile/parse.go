// Package csvfile reads and writes the simple comma-separated files used for
// bulk entry upload.
//
// The format is deliberately naive: fields are split on every comma and no
// quoting or escaping is honored. A value containing a comma will shift the
// remaining columns of its line. Sample templates are written the same way,
// so files produced here always round-trip through Parse.
package csvfile

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrMalformedFile is returned when a file lacks a header line or data lines.
	ErrMalformedFile = errors.New("malformed csv: need a header line and at least one data line")

	// ErrNotCSV is returned for uploads whose name does not end in .csv.
	ErrNotCSV = errors.New("not a csv file")
)

// Row is one data line keyed by header name.
type Row struct {
	Line   int               // 1-based line number in the source text
	Values map[string]string // Every header key is present
}

// Get returns the value for a header, or "" if absent.
func (r Row) Get(header string) string {
	return r.Values[header]
}

// File is the parsed form of an uploaded CSV.
type File struct {
	Headers []string
	Rows    []Row
}

// CheckExtension enforces the .csv suffix (case-insensitive).
func CheckExtension(filename string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return ErrNotCSV
	}
	return nil
}

// Parse converts raw file text into header-keyed rows in file order.
//
// Blank lines are ignored. The first remaining line is the header. Data lines
// shorter than the header are padded with empty strings; extra fields are
// dropped.
func Parse(text string) (*File, error) {
	type line struct {
		num  int
		text string
	}

	var lines []line
	for i, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, line{num: i + 1, text: l})
	}
	if len(lines) < 2 {
		return nil, ErrMalformedFile
	}

	headers := splitLine(lines[0].text)
	f := &File{
		Headers: headers,
		Rows:    make([]Row, 0, len(lines)-1),
	}

	for _, l := range lines[1:] {
		fields := splitLine(l.text)
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				values[h] = fields[i]
			} else {
				values[h] = ""
			}
		}
		f.Rows = append(f.Rows, Row{Line: l.num, Values: values})
	}

	return f, nil
}

// splitLine splits on raw commas, trims each field and strips one pair of
// surrounding double quotes.
func splitLine(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
			p = p[1 : len(p)-1]
		}
		parts[i] = p
	}
	return parts
}
