package web

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/pharmadb/internal/csvfile"
)

// handleDownloadTemplate serves the sample CSV of a list type. Names with a
// slash arrive path-escaped.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "listType"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: list type: %v", errBadRequest, err))
		return
	}

	text, err := csvfile.RenderSample(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	filename, err := csvfile.SampleFilename(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	csvfile.Download(w, text, filename)
}
