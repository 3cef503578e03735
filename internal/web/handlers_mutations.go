package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/pharmadb/internal/logging"
)

// handleAddEntry saves one manual entry. The body is a flat JSON object of
// column to value; blank values are dropped.
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subdomain(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	wf, err := s.service.NewWorkflow(sub.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := wf.Open(); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := wf.ChooseManual(); err != nil {
		s.respondError(w, r, err)
		return
	}
	for k, v := range body {
		if err := wf.Set(k, stringify(v)); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	rec, err := wf.Save(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

type deleteRequest struct {
	IDs []any `json:"ids"`
}

// handleDeleteEntries deletes the selected rows of a subdomain. Partial
// failure is reported as DEL001 with no per-row detail.
func (s *Server) handleDeleteEntries(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subdomain(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if v := stringify(id); v != "" {
			ids = append(ids, v)
		}
	}
	if len(ids) == 0 {
		s.respondError(w, r, fmt.Errorf("%w: no rows specified", errBadRequest))
		return
	}

	if err := s.service.DeleteRows(r.Context(), sub.Name, ids); err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("entries deleted", "subdomain", sub.Name, "rows", len(ids))
	writeJSON(w, http.StatusOK, map[string]int{"deleted": len(ids)})
}
