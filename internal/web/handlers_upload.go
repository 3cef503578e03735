package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/pharmadb/internal/core"
)

type importResponse struct {
	core.ImportResult
	Message string `json:"message"`
	Partial bool   `json:"partial"`
}

// handleImport imports a CSV file into a subdomain. With a list_id form
// field the file goes to that list's bulk endpoint; otherwise rows are
// created one at a time and failures tallied.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subdomain(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name, content, err := s.readUpload(w, r, "file")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var opts []core.WorkflowOption
	if v := strings.TrimSpace(r.FormValue("list_id")); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			s.respondError(w, r, fmt.Errorf("%w: list_id %q", errBadRequest, v))
			return
		}
		opts = append(opts, core.WithListScope(id))
	}

	wf, err := s.service.NewWorkflow(sub.Name, opts...)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := wf.Open(); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := wf.ChooseCSV(); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := wf.SelectFile(name, content); err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := wf.Upload(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		ImportResult: res,
		Message:      res.Message(),
		Partial:      res.Partial(),
	})
}

// handleIngest forwards a document to the backend extractor.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	name, content, err := s.readUpload(w, r, "file")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.Ingest(r.Context(), r.FormValue("uploader_name"), name, bytes.NewReader(content))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
