package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/core"
)

const timeFormat = "2006-01-02 15:04:05"

// TemplateURL is the sample download link for a list type.
func TemplateURL(listType string) string {
	return "/api/template/" + url.PathEscape(listType)
}

// DomainURL links to a domain page, optionally with a subdomain selected.
func DomainURL(domainID int, subdomain string) string {
	u := "/domains/" + strconv.Itoa(domainID)
	if subdomain != "" {
		u += "?subdomain=" + url.QueryEscape(subdomain)
	}
	return u
}

// AddURL is the domain page of subdomain with its add forms open.
func AddURL(domainID int, subdomain string) string {
	return DomainURL(domainID, subdomain) + "&adding=1"
}

// Dashboard lists every domain with its list count.
func Dashboard(snap core.DashboardSnapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<h1>Domains</h1><div class="cards">`)
		for _, ds := range snap.Domains {
			p.raw(`<div class="card"><h2><a href="` + DomainURL(ds.Domain.BackendID, "") + `">`)
			p.text(ds.Domain.Name)
			p.raw(`</a></h2><p>`)
			p.printf("%d lists", ds.ListCount)
			p.raw(`</p><ul>`)
			for _, lt := range ds.Domain.ListTypes {
				p.raw(`<li>`)
				p.text(lt)
				p.raw(` <a class="muted" href="` + TemplateURL(lt) + `">sample csv</a></li>`)
			}
			p.raw(`</ul></div>`)
		}
		p.raw(`</div>`)
		if !snap.FetchedAt.IsZero() {
			p.raw(`<p class="muted">Updated `)
			p.text(snap.FetchedAt.Format(timeFormat))
			p.raw(`</p>`)
		}
		return p.err
	})
}

// DomainPage shows a domain's subdomains, list requests and the selected
// subdomain's entries. With adding set, the import form replaces the "Add
// entries" link.
func DomainPage(snap core.DomainSnapshot, adding bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<h1>`)
		p.text(snap.Domain.Name)
		p.raw(`</h1><nav>`)
		for _, sub := range snap.Subdomains {
			p.raw(`<a href="` + DomainURL(snap.Domain.BackendID, sub.Name) + `">`)
			if sub.Name == snap.Selected {
				p.raw(`<strong>`)
				p.text(sub.Name)
				p.raw(`</strong>`)
			} else {
				p.text(sub.Name)
			}
			p.raw(`</a>`)
		}
		p.raw(`</nav>`)

		if snap.Selected != "" {
			p.raw(`<h2>`)
			p.text(snap.Selected)
			p.raw(`</h2>`)
			if sub, ok := findSubdomain(snap.Subdomains, snap.Selected); ok {
				if adding {
					p.render(ctx, importForm(snap.Domain.BackendID, sub.ID))
					p.raw(`<p><a href="` + DomainURL(snap.Domain.BackendID, snap.Selected) + `">Done adding</a></p>`)
				} else {
					p.raw(`<p><a href="`)
					p.text(AddURL(snap.Domain.BackendID, snap.Selected))
					p.raw(`">Add entries</a></p>`)
				}
			}
			p.raw(`<p><a href="` + TemplateURL(snap.Selected) + `">Download sample CSV</a></p>`)
			p.render(ctx, EntryTable(snap.Columns, snap.Entries))
		}

		p.raw(`<h2>List requests</h2>`)
		p.render(ctx, ListTable(snap.Lists))
		if !snap.FetchedAt.IsZero() {
			p.raw(`<p class="muted">Updated `)
			p.text(snap.FetchedAt.Format(timeFormat))
			p.raw(`</p>`)
		}
		return p.err
	})
}

func findSubdomain(subs []api.Subdomain, name string) (api.Subdomain, bool) {
	for _, s := range subs {
		if s.Name == name {
			return s, true
		}
	}
	return api.Subdomain{}, false
}

func importForm(domainID, subdomainID int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.printf(`<form method="post" enctype="multipart/form-data" action="/api/domains/%d/subdomains/%d/import">`, domainID, subdomainID)
		p.raw(`<input type="file" name="file" accept=".csv"> <button type="submit">Import CSV</button></form>`)
		return p.err
	})
}

// EntryTable renders records schema-less: one column per key of columns,
// blank where a record lacks the key.
func EntryTable(columns []string, records []api.Record) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		if len(records) == 0 {
			p.raw(`<p class="muted">No entries yet.</p>`)
			return p.err
		}
		p.raw(`<table><thead><tr>`)
		for _, c := range columns {
			p.raw(`<th>`)
			p.text(c)
			p.raw(`</th>`)
		}
		p.raw(`</tr></thead><tbody>`)
		for _, rec := range records {
			p.raw(`<tr>`)
			for _, c := range columns {
				p.raw(`<td>`)
				p.text(rec.String(c))
				p.raw(`</td>`)
			}
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

// ListTable renders list request summaries with links to their history.
func ListTable(lists []api.ListRequest) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		if len(lists) == 0 {
			p.raw(`<p class="muted">No list requests.</p>`)
			return p.err
		}
		p.raw(`<table><thead><tr><th>ID</th><th>Requester</th><th>Purpose</th><th>Status</th><th>Created</th><th></th></tr></thead><tbody>`)
		for _, l := range lists {
			id := strconv.Itoa(l.ID)
			p.raw(`<tr><td>` + id + `</td><td>`)
			p.text(l.RequesterName)
			p.raw(`</td><td>`)
			p.text(l.RequestPurpose)
			p.raw(`</td><td>`)
			p.text(l.Status)
			p.raw(`</td><td>`)
			p.text(l.CreatedAt)
			p.raw(`</td><td><a href="/lists/` + id + `/versions">versions</a> <a href="/lists/` + id + `/worklogs">work logs</a></td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

// VersionList renders a version history.
func VersionList(title string, versions []api.Version) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<h1>`)
		p.text(title)
		p.raw(`</h1>`)
		if len(versions) == 0 {
			p.raw(`<p class="muted">No versions recorded.</p>`)
			return p.err
		}
		p.raw(`<table><thead><tr><th>Version</th><th>Change</th><th>Rationale</th><th>By</th><th>At</th><th>Current</th></tr></thead><tbody>`)
		for _, v := range versions {
			p.printf(`<tr><td>%d</td><td>`, v.Number)
			p.text(v.ChangeType)
			p.raw(`</td><td>`)
			p.text(v.ChangeRationale)
			p.raw(`</td><td>`)
			p.text(v.CreatedBy)
			p.raw(`</td><td>`)
			p.text(v.CreatedAt)
			p.raw(`</td><td>`)
			if v.IsCurrent {
				p.raw(`yes`)
			}
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

// WorkLogList renders recorded work against a list or domain.
func WorkLogList(title string, logs []api.WorkLog) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<h1>`)
		p.text(title)
		p.raw(`</h1>`)
		if len(logs) == 0 {
			p.raw(`<p class="muted">No work logged.</p>`)
			return p.err
		}
		p.raw(`<table><thead><tr><th>Worker</th><th>Activity</th><th>Decisions</th><th>Date</th></tr></thead><tbody>`)
		for _, l := range logs {
			p.raw(`<tr><td>`)
			p.text(l.WorkerName)
			p.raw(`</td><td>`)
			p.text(l.ActivityDescription)
			p.raw(`</td><td>`)
			p.text(l.DecisionsMade)
			p.raw(`</td><td>`)
			p.text(l.ActivityDate)
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}
