package tables

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JonMunkholm/datatable/internal/core"
)

var (
	printer    = message.NewPrinter(language.English)
	titleCaser = cases.Title(language.English)
)

// formatters are the display formats a column may name.
var formatters = map[string]func(core.CellContext) string{
	"currency": formatCurrency,
	"number":   formatNumber,
	"percent":  formatPercent,
	"date":     formatDate,
	"datetime": formatDateTime,
	"boolean":  formatBoolean,
	"title":    formatTitle,
}

func formatCurrency(c core.CellContext) string {
	n, ok := core.ParseNumber(c.Value)
	if !ok {
		return core.ToText(c.Value)
	}
	if n < 0 {
		return printer.Sprintf("-$%.2f", -n)
	}
	return printer.Sprintf("$%.2f", n)
}

func formatNumber(c core.CellContext) string {
	n, ok := core.ParseNumber(c.Value)
	if !ok {
		return core.ToText(c.Value)
	}
	if n == math.Trunc(n) {
		return printer.Sprintf("%d", int64(n))
	}
	return printer.Sprintf("%.2f", n)
}

func formatPercent(c core.CellContext) string {
	n, ok := core.ParseNumber(c.Value)
	if !ok {
		return core.ToText(c.Value)
	}
	return printer.Sprintf("%.0f%%", n)
}

func formatDate(c core.CellContext) string {
	t, ok := core.ParseTime(c.Value)
	if !ok {
		return core.ToText(c.Value)
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(c core.CellContext) string {
	t, ok := core.ParseTime(c.Value)
	if !ok {
		return core.ToText(c.Value)
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

func formatBoolean(c core.CellContext) string {
	b, ok := core.ParseBool(c.Value)
	if !ok {
		return core.ToText(c.Value)
	}
	if b {
		return "Yes"
	}
	return "No"
}

func formatTitle(c core.CellContext) string {
	return titleCaser.String(strings.ReplaceAll(core.ToText(c.Value), "_", " "))
}
