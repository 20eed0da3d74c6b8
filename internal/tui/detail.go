package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (a *App) openDetail(id int64) tea.Cmd {
	a.state = viewDetail
	a.detailID = id
	a.detail = nil
	a.detailErr = nil
	a.loading = true
	return a.loadDetail(id)
}

func (a *App) updateDetail(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Back):
		return a, a.showList()
	case key.Matches(m, a.keys.Refresh):
		return a, a.openDetail(a.detailID)
	}
	return a, nil
}

func (a *App) renderDetail() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Inventory #%d", a.detailID)) + "\n\n")
	switch {
	case a.loading:
		b.WriteString(mutedStyle.Render("Loading...") + "\n")
	case a.detailErr != nil:
		b.WriteString(errorStyle.Render("Failed to load inventory: "+a.detailErr.Error()) + "\n")
	case a.detail != nil:
		inv := a.detail
		fmt.Fprintf(&b, "ID:        %d\n", inv.ID)
		fmt.Fprintf(&b, "Title:     %s\n", inv.Title)
		fmt.Fprintf(&b, "Quantity:  %s\n", orDash(inv.Quantity))
		image := ""
		if inv.ItemImage.URL != nil {
			image = *inv.ItemImage.URL
		}
		fmt.Fprintf(&b, "Image:     %s\n", orDash(image))
	}
	b.WriteString("\n" + helpLine(a.keys.Back, a.keys.Refresh, a.keys.Quit))
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
