package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
)

// Columns returns the keys of the first record in order. Entry tables are
// rendered schema-less from this list; later records missing a key render
// an empty cell.
func Columns(records []api.Record) []string {
	if len(records) == 0 {
		return nil
	}
	return records[0].Keys()
}

// DashboardListLimit is how many recent lists the dashboard counts.
const DashboardListLimit = 500

// DomainSummary is one dashboard card.
type DomainSummary struct {
	Domain    catalog.Domain
	ListCount int
	Lists     []api.ListRequest
}

// DashboardSnapshot is the latest dashboard fetch.
type DashboardSnapshot struct {
	Domains   []DomainSummary
	FetchedAt time.Time
}

// Dashboard counts the lists of every catalog domain.
type Dashboard struct {
	svc    *Service
	poller *Poller

	mu   sync.RWMutex
	snap DashboardSnapshot
}

// NewDashboard creates a dashboard refreshed every interval once its poller runs.
func (s *Service) NewDashboard(interval time.Duration) *Dashboard {
	d := &Dashboard{svc: s}
	d.poller = NewPoller("dashboard", interval, d.Refresh)
	return d
}

// Poller returns the dashboard's refresh loop.
func (d *Dashboard) Poller() *Poller {
	return d.poller
}

// Refresh fetches lists and replaces the snapshot.
func (d *Dashboard) Refresh(ctx context.Context) error {
	lists, err := d.svc.backend.Lists(ctx, api.ListFilter{Limit: DashboardListLimit})
	d.svc.metrics.Refresh("dashboard", err)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	byDomain := make(map[int][]api.ListRequest)
	for _, l := range lists {
		if l.Subdomain == nil {
			continue
		}
		byDomain[l.Subdomain.DomainID] = append(byDomain[l.Subdomain.DomainID], l)
	}

	domains := catalog.Domains()
	snap := DashboardSnapshot{
		Domains:   make([]DomainSummary, 0, len(domains)),
		FetchedAt: time.Now(),
	}
	for _, dom := range domains {
		ls := byDomain[dom.BackendID]
		snap.Domains = append(snap.Domains, DomainSummary{
			Domain:    dom,
			ListCount: len(ls),
			Lists:     ls,
		})
	}

	d.mu.Lock()
	d.snap = snap
	d.mu.Unlock()
	return nil
}

// Snapshot returns the latest fetch.
func (d *Dashboard) Snapshot() DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// DomainSnapshot is the latest domain view fetch.
type DomainSnapshot struct {
	Domain     catalog.Domain
	Subdomains []api.Subdomain
	Lists      []api.ListRequest

	// Populated when a subdomain is selected.
	Selected string
	Table    string
	Entries  []api.Record
	Columns  []string

	FetchedAt time.Time
}

// DomainView holds the subdomains, list requests and selected entry table
// of one domain.
type DomainView struct {
	svc    *Service
	domain catalog.Domain
	poller *Poller

	mu       sync.RWMutex
	selected string
	snap     DomainSnapshot
}

// NewDomainView creates a view of domain refreshed every interval.
func (s *Service) NewDomainView(domain catalog.Domain, interval time.Duration) *DomainView {
	v := &DomainView{svc: s, domain: domain}
	v.snap.Domain = domain
	v.poller = NewPoller("domain:"+domain.Key, interval, v.Refresh)
	return v
}

// Poller returns the view's refresh loop.
func (v *DomainView) Poller() *Poller {
	return v.poller
}

// Select chooses the subdomain whose entries are shown. An unmapped name is
// refused and the previous selection kept.
func (v *DomainView) Select(subdomain string) error {
	if _, err := resolve(subdomain); err != nil {
		return err
	}
	v.mu.Lock()
	v.selected = subdomain
	v.mu.Unlock()
	v.poller.Trigger()
	return nil
}

// Selected returns the chosen subdomain name, or "".
func (v *DomainView) Selected() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selected
}

// Refresh fetches subdomains, list requests and the selected entries, then
// replaces the snapshot.
func (v *DomainView) Refresh(ctx context.Context) error {
	err := v.refresh(ctx)
	v.svc.metrics.Refresh("domain", err)
	return err
}

func (v *DomainView) refresh(ctx context.Context) error {
	subs, err := v.svc.backend.Subdomains(ctx, v.domain.BackendID)
	if err != nil {
		return fmt.Errorf("domain %s subdomains: %w", v.domain.Key, err)
	}
	lists, err := v.svc.backend.ListRequests(ctx, v.domain.BackendID)
	if err != nil {
		return fmt.Errorf("domain %s list requests: %w", v.domain.Key, err)
	}

	snap := DomainSnapshot{
		Domain:     v.domain,
		Subdomains: subs,
		Lists:      lists,
		Selected:   v.Selected(),
	}
	if snap.Selected != "" {
		table, rows, err := v.svc.Entries(ctx, snap.Selected)
		if err != nil {
			return fmt.Errorf("domain %s entries: %w", v.domain.Key, err)
		}
		snap.Table = table
		snap.Entries = rows
		snap.Columns = Columns(rows)
	}
	snap.FetchedAt = time.Now()

	v.mu.Lock()
	v.snap = snap
	v.mu.Unlock()
	return nil
}

// Snapshot returns the latest fetch.
func (v *DomainView) Snapshot() DomainSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap
}

// BeginAdd opens an add workflow on the selected subdomain. The view stops
// polling until the workflow closes; a save or finished upload triggers a
// refresh. OnClose options in opts run before the view resumes.
func (v *DomainView) BeginAdd(opts ...WorkflowOption) (*Workflow, error) {
	subdomain := v.Selected()
	if subdomain == "" {
		return nil, fmt.Errorf("%w: no subdomain selected", ErrInvalidState)
	}

	v.poller.Pause()
	all := append(opts[:len(opts):len(opts)], OnClose(func(refresh bool) {
		v.poller.Resume()
		if refresh {
			v.poller.Trigger()
		}
	}))

	w, err := v.svc.NewWorkflow(subdomain, all...)
	if err != nil {
		v.poller.Resume()
		return nil, err
	}
	if err := w.Open(); err != nil {
		v.poller.Resume()
		return nil, err
	}
	return w, nil
}

// DeleteSelected deletes ids from the selected subdomain and refreshes.
func (v *DomainView) DeleteSelected(ctx context.Context, ids []string) error {
	subdomain := v.Selected()
	if subdomain == "" {
		return fmt.Errorf("%w: no subdomain selected", ErrInvalidState)
	}
	err := v.svc.DeleteRows(ctx, subdomain, ids)
	v.poller.Trigger()
	return err
}
