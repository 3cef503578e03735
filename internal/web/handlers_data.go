package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/core"
	"github.com/JonMunkholm/pharmadb/internal/web/templates"
)

// handleDashboard renders the domain cards. The page reloads itself on the
// dashboard poll interval.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := s.service.NewDashboard(s.cfg.Poll.Dashboard)
	if err := d.Refresh(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	render(w, r, templates.WithLayout("Dashboard", s.cfg.Poll.Dashboard, templates.Dashboard(d.Snapshot())))
}

// handleDomainPage renders one domain. ?subdomain= selects the entry table
// and ?adding=1 opens its add forms, which stops the page reloading itself
// until the user leaves add mode.
func (s *Server) handleDomainPage(w http.ResponseWriter, r *http.Request) {
	dom, err := domain(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	v := s.service.NewDomainView(dom, s.cfg.Poll.Domain)
	if sub := r.URL.Query().Get("subdomain"); sub != "" {
		if err := v.Select(sub); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	adding := r.URL.Query().Get("adding") == "1"
	if adding {
		wf, err := v.BeginAdd()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		defer wf.Cancel()
	}
	if err := v.Refresh(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}

	refresh := v.Poller().Interval()
	if v.Poller().Paused() {
		refresh = 0
	}
	render(w, r, templates.WithLayout(dom.Name, refresh, templates.DomainPage(v.Snapshot(), adding)))
}

func (s *Server) handleVersionsPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	h, err := s.service.ListHistory(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	title := fmt.Sprintf("Versions of list %d", id)
	render(w, r, templates.WithLayout(title, 0, templates.VersionList(title, h.Versions)))
}

func (s *Server) handleWorkLogsPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "listID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	h, err := s.service.ListHistory(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	title := fmt.Sprintf("Work logs of list %d", id)
	render(w, r, templates.WithLayout(title, 0, templates.WorkLogList(title, h.WorkLogs)))
}

func (s *Server) handleDomainVersionsPage(w http.ResponseWriter, r *http.Request) {
	dom, err := domain(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	h, err := s.service.DomainHistory(r.Context(), dom.BackendID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	title := "Versions in " + dom.Name
	render(w, r, templates.WithLayout(title, 0, templates.VersionList(title, h.Versions)))
}

func (s *Server) handleDomainWorkLogsPage(w http.ResponseWriter, r *http.Request) {
	dom, err := domain(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	h, err := s.service.DomainHistory(r.Context(), dom.BackendID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	title := "Work logs in " + dom.Name
	render(w, r, templates.WithLayout(title, 0, templates.WorkLogList(title, h.WorkLogs)))
}

type entriesResponse struct {
	Subdomain string       `json:"subdomain"`
	Table     string       `json:"table"`
	Columns   []string     `json:"columns"`
	Entries   []api.Record `json:"entries"`
}

// handleListEntries returns a subdomain's entry rows as JSON.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subdomain(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	table, rows, err := s.service.Entries(r.Context(), sub.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if rows == nil {
		rows = []api.Record{}
	}
	writeJSON(w, http.StatusOK, entriesResponse{
		Subdomain: sub.Name,
		Table:     table,
		Columns:   core.Columns(rows),
		Entries:   rows,
	})
}
