package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/pharmadb/internal/api"
)

// handleLists returns list summaries. Query: category, subdomain_id, limit.
func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	filter := api.ListFilter{
		Category:    r.URL.Query().Get("category"),
		SubdomainID: parseIntParam(r, "subdomain_id", 0),
		Limit:       parseIntParam(r, "limit", 0),
	}
	lists, err := s.service.Backend().Lists(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if lists == nil {
		lists = []api.ListRequest{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleListDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.service.Backend().List(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var in api.NewList
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	l, err := s.service.CreateList(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/lists/"+strconv.Itoa(l.ID))
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var in api.ListUpdate
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	l, err := s.service.UpdateList(r.Context(), id, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.DeleteList(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemsRequest struct {
	Items []map[string]any `json:"items"`
}

// handleAddItems appends items to a list as the request's actor.
func (s *Server) handleAddItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req addItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	items := make([]map[string]string, 0, len(req.Items))
	for _, it := range req.Items {
		m := make(map[string]string, len(it))
		for k, v := range it {
			m[k] = stringify(v)
		}
		items = append(items, m)
	}

	res, err := s.service.AddItems(r.Context(), id, items)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCreateVersion records a version. The path id wins over the body.
func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var in api.NewVersion
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	in.RequestID = id

	v, err := s.service.CreateVersion(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleCreateWorkLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var in api.NewWorkLog
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	in.RequestID = id

	wl, err := s.service.CreateWorkLog(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wl)
}
