package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datatable/internal/core"
)

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="https://unpkg.com/htmx.org@2.0.4" crossorigin="anonymous"></script>`)
		h.raw(`<script src="/static/datatable.js" defer></script>`)
		h.raw(`</head><body><header class="topbar"><a href="/">Tables</a></header>`)
		h.raw(`<div id="alerts" class="alerts" aria-live="polite"></div><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

// TableCard summarizes one table on the index page.
type TableCard struct {
	Key     string
	Label   string
	Columns int
	Rows    int
}

// TableList is the index page body.
func TableList(cards []TableCard) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>Tables</h1>`)
		if len(cards) == 0 {
			h.raw(`<p class="empty">No tables registered</p>`)
			return
		}
		h.raw(`<ul class="cards">`)
		for _, c := range cards {
			h.raw(`<li class="card"><a`)
			h.href(TablePath(c.Key, core.State{}))
			h.raw(`>`)
			h.text(c.Label)
			h.raw(`</a><span class="muted">`)
			h.text(plural(c.Columns, "column", "columns") + ", " + plural(c.Rows, "row", "rows"))
			h.raw(`</span></li>`)
		}
		h.raw(`</ul>`)
	})
}

// ErrorAlert is a dismissible error message.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` <span>`)
			h.text(action)
			h.raw(`</span>`)
		}
		if code != "" {
			h.raw(` <code>`)
			h.text(code)
			h.raw(`</code>`)
		}
		h.raw(`<button type="button" class="alert-close" onclick="this.parentElement.remove()" aria-label="Dismiss">&times;</button></div>`)
	})
}
