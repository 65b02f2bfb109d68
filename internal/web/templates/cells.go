package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datatable/internal/core"
)

// CellDisplay is an editable cell in display mode.
func CellDisplay(ref core.CellRef, text string, editable bool) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="cell-editable"`)
		h.attr("id", CellID(ref))
		h.raw(`><span class="cell-value">`)
		h.text(text)
		h.raw(`</span>`)
		if editable {
			h.raw(`<button type="button" class="cell-edit" title="Edit" onclick="event.stopPropagation()"`)
			h.attr("hx-get", CellPath(ref)+"/edit")
			h.attr("hx-target", "#"+CellID(ref))
			h.attr("hx-swap", "outerHTML")
			h.raw(`>✎</button>`)
		}
		h.raw(`</div>`)
	})
}

// CellEditor is a cell in edit mode. Enter or leaving the input commits,
// Escape cancels.
func CellEditor(ref core.CellRef, col *core.ColumnConfig, draft string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		path := CellPath(ref)

		h.raw(`<div class="cell-editing" onclick="event.stopPropagation()"`)
		h.attr("id", CellID(ref))
		h.attr("hx-get", path)
		h.attr("hx-trigger", "keyup[key=='Escape']")
		h.attr("hx-target", "this")
		h.attr("hx-swap", "outerHTML")
		h.raw(`>`)

		commit := func(trigger string) {
			h.attr("name", "value")
			h.attr("hx-post", path)
			h.attr("hx-trigger", trigger)
			h.attr("hx-target", "#"+CellID(ref))
			h.attr("hx-swap", "outerHTML")
			h.flag("autofocus", true)
		}

		switch col.EffectiveEditType() {
		case core.EditSelect:
			h.raw(`<select`)
			commit("change, blur")
			h.raw(`>`)
			for _, opt := range col.EditOptions {
				h.raw(`<option`)
				h.attr("value", opt.Value)
				h.flag("selected", opt.Value == draft)
				h.raw(`>`)
				h.text(opt.Label)
				h.raw(`</option>`)
			}
			h.raw(`</select>`)
		default:
			inputType := "text"
			switch col.EffectiveEditType() {
			case core.EditDate:
				inputType = "date"
			case core.EditNumber:
				inputType = "number"
			}
			h.raw(`<input autocomplete="off"`)
			h.attr("type", inputType)
			if inputType == "number" {
				h.attr("step", "any")
			}
			h.attr("value", draft)
			commit("keyup[key=='Enter'], blur")
			h.raw(`>`)
		}
		h.raw(`</div>`)
	})
}
