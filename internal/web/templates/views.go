package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datatable/internal/core"
)

// ViewSelector lists saved views with apply and delete actions, plus save
// and reset.
func ViewSelector(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		key := t.Def.Key
		label := "Default view"
		if t.CurrentView != nil {
			label = t.CurrentView.Name
		}

		h.raw(`<details class="menu views"><summary>`)
		h.text(label)
		h.raw(`</summary><ul class="menu-list">`)
		for _, v := range t.Views {
			current := t.CurrentView != nil && t.CurrentView.ID == v.ID
			h.raw(`<li`)
			if current {
				h.attr("class", "current")
			}
			h.raw(`><button type="button" class="link"`)
			navigate(h, key, "post", withState(ViewsPath(key, v.ID, "apply"), t.State), false)
			h.raw(`>`)
			h.text(v.Name)
			h.raw(`</button>`)
			if v.IsDefault {
				h.raw(` <span class="badge">Default</span>`)
			}
			h.raw(`<button type="button" class="icon danger"`)
			h.attr("aria-label", "Delete view "+v.Name)
			h.attr("hx-post", withState(ViewsPath(key, v.ID, "delete"), t.State))
			h.attr("hx-target", "#"+DialogID(key))
			h.attr("hx-swap", "innerHTML")
			h.raw(`>&times;</button></li>`)
		}
		if len(t.Views) == 0 {
			h.raw(`<li class="muted">No saved views</li>`)
		}
		h.raw(`<li class="divider"></li><li><button type="button" class="link"`)
		h.attr("hx-get", withState(ViewsPath(key), t.State))
		h.attr("hx-target", "#"+DialogID(key))
		h.attr("hx-swap", "innerHTML")
		h.raw(`>Save current view...</button></li>`)
		h.raw(`<li><button type="button" class="link"`)
		navigate(h, key, "post", withState(ViewsPath(key, "reset"), t.State), false)
		h.raw(`>Reset to default</button></li>`)
		h.raw(`</ul></details>`)
	})
}

// SaveViewDialog asks for the name of a new view.
func SaveViewDialog(key string, st core.State) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<dialog open class="dialog"><form`)
		navigate(h, key, "post", withState(ViewsPath(key), st), false)
		h.raw(`><h3>Save view</h3>`)
		h.raw(`<p class="muted">Saves the visible columns and page size.</p>`)
		h.raw(`<label>Name <input type="text" name="name" required maxlength="100" autofocus></label>`)
		h.raw(`<label class="check"><input type="checkbox" name="default" value="1"> Use as default view</label>`)
		h.raw(`<div class="actions">`)
		h.raw(`<button type="button" onclick="this.closest('dialog').remove()">Cancel</button>`)
		h.raw(`<button type="submit" class="primary">Save</button>`)
		h.raw(`</div></form></dialog>`)
	})
}

// DeleteViewDialog confirms deletion of a view.
func DeleteViewDialog(key string, view core.ViewState, st core.State) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<dialog open class="dialog"><h3>Delete view</h3><p>Delete the view <strong>`)
		h.text(view.Name)
		h.raw(`</strong>? This cannot be undone.</p><div class="actions">`)

		h.raw(`<button type="button"`)
		h.attr("hx-post", withState(ViewsPath(key, view.ID, "delete", "cancel"), st))
		h.attr("hx-target", "#"+DialogID(key))
		h.attr("hx-swap", "innerHTML")
		h.raw(`>Cancel</button>`)

		h.raw(`<button type="button" class="danger"`)
		navigate(h, key, "post", withState(ViewsPath(key, view.ID, "delete", "confirm"), st), false)
		h.raw(`>Delete</button>`)
		h.raw(`</div></dialog>`)
	})
}
