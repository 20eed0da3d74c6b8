package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/stockterm/internal/api"
	"github.com/jask/stockterm/internal/service"
)

func (a *App) visible() []api.Inventory {
	return service.FilterInventories(a.items, a.filter.Value())
}

func (a *App) clampCursor() {
	n := len(a.visible())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) updateList(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.filtering {
		switch {
		case key.Matches(m, a.keys.Back):
			a.filtering = false
			a.filter.Blur()
			a.filter.SetValue("")
			a.cursor = 0
			return a, nil
		case key.Matches(m, a.keys.Open):
			a.filtering = false
			a.filter.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.filter, cmd = a.filter.Update(m)
		a.cursor = 0
		return a, cmd
	}

	rows := a.visible()
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.cursor < len(rows)-1 {
			a.cursor++
		}
	case key.Matches(m, a.keys.Refresh):
		return a, a.refresh()
	case key.Matches(m, a.keys.Filter):
		a.filtering = true
		return a, a.filter.Focus()
	case key.Matches(m, a.keys.New):
		return a, a.openRegister()
	case key.Matches(m, a.keys.Open):
		if len(rows) > 0 {
			return a, a.openDetail(rows[a.cursor].ID)
		}
	case key.Matches(m, a.keys.Back):
		if a.filter.Value() != "" {
			a.filter.SetValue("")
			a.cursor = 0
		}
	}
	return a, nil
}

func (a *App) renderList() string {
	rows := a.visible()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Inventories"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" %d/%d", len(rows), len(a.items))))
	b.WriteString("\n")
	if a.filtering || a.filter.Value() != "" {
		b.WriteString(a.filter.View() + "\n")
	}
	b.WriteString("\n")

	if len(rows) == 0 {
		if len(a.items) == 0 {
			b.WriteString(mutedStyle.Render("No inventories. Press r to refresh or n to register one."))
		} else {
			b.WriteString(mutedStyle.Render("No inventories match the filter."))
		}
		b.WriteString("\n")
	}

	start, end := window(a.cursor, len(rows), a.ui.PageSize)
	for i := start; i < end; i++ {
		b.WriteString(a.renderRow(rows[i], i == a.cursor) + "\n")
	}
	if end < len(rows) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  ... %d more", len(rows)-end)) + "\n")
	}

	b.WriteString("\n")
	if a.filtering {
		b.WriteString(helpLine(a.keys.Open, a.keys.Back))
	} else {
		b.WriteString(helpLine(a.keys.Up, a.keys.Down, a.keys.Open, a.keys.Filter, a.keys.Refresh, a.keys.New, a.keys.Quit))
	}
	return b.String()
}

func (a *App) renderRow(inv api.Inventory, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}
	id := fmt.Sprintf("%8d  ", inv.ID)
	avail := a.width - len(prefix) - len(id)
	if avail < 8 {
		avail = 8
	}
	line := prefix + id + ansi.Truncate(inv.Title, avail, "…")
	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

// window returns the row range to draw so that cursor stays visible.
func window(cursor, total, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}
