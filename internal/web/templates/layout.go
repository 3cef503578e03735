// Package templates renders the gateway's HTML pages as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// page accumulates the first write error so components read top to bottom.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *page) render(ctx context.Context, c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(ctx, p.w)
	}
}

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1d2430}` +
	`header{background:#0b5cad;color:#fff;padding:12px 24px}header a{color:#fff;text-decoration:none}` +
	`main{padding:24px;max-width:1200px;margin:auto}` +
	`.cards{display:grid;grid-template-columns:repeat(auto-fill,minmax(260px,1fr));gap:16px}` +
	`.card{background:#fff;border-radius:8px;padding:16px;box-shadow:0 1px 3px rgba(0,0,0,.1)}` +
	`table{border-collapse:collapse;width:100%;background:#fff}th,td{border:1px solid #dde1e7;padding:6px 8px;text-align:left;font-size:14px}` +
	`.alert{background:#fdecea;border:1px solid #f5c2c0;padding:12px;border-radius:6px;margin-bottom:16px}` +
	`.muted{color:#6b7380;font-size:13px}nav a{margin-right:12px}`

// Layout wraps children in the page shell. A positive refresh makes the
// browser reload the page on that interval.
func Layout(title string, refresh time.Duration) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if secs := int(refresh / time.Second); secs > 0 {
			p.raw(`<meta http-equiv="refresh" content="` + strconv.Itoa(secs) + `">`)
		}
		p.raw(`<title>`)
		p.text(title)
		p.raw(` | PharmaDB</title><style>` + styles + `</style></head><body>`)
		p.raw(`<header><a href="/"><strong>PharmaDB</strong></a></header><main>`)
		p.render(ctx, templ.GetChildren(ctx))
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// ErrorAlert is the notification partial for a mapped error.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<div class="alert" role="alert"><strong>`)
		p.text(message)
		p.raw(`</strong>`)
		if action != "" {
			p.raw(`<div>`)
			p.text(action)
			p.raw(`</div>`)
		}
		if code != "" {
			p.raw(`<div class="muted">Code: `)
			p.text(code)
			p.raw(`</div>`)
		}
		p.raw(`</div>`)
		return p.err
	})
}

// WithLayout renders body inside Layout.
func WithLayout(title string, refresh time.Duration, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(title, refresh).Render(templ.WithChildren(ctx, body), w)
	})
}
