package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/stockterm/internal/database/repository"
	"github.com/jask/stockterm/internal/register"
)

func (a *App) openRegister() tea.Cmd {
	a.state = viewRegister
	a.flow.SetTitle(a.title.Value())
	return tea.Batch(a.title.Focus(), a.loadHistory())
}

func (a *App) updateRegister(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Back):
		a.title.Blur()
		return a, a.showList()
	case key.Matches(m, a.keys.Submit):
		if a.pending || !a.flow.Control().Enabled {
			return a, nil
		}
		return a, a.submit()
	}
	var cmd tea.Cmd
	a.title, cmd = a.title.Update(m)
	a.flow.SetTitle(a.title.Value())
	return a, cmd
}

func (a *App) renderRegister() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Register inventory") + "\n\n")
	b.WriteString(a.title.View() + "\n\n")

	ctl := a.flow.Control()
	if a.pending {
		ctl = register.Control{Enabled: false, Label: register.LabelSubmitting}
	}
	if ctl.Enabled {
		b.WriteString(buttonStyle.Render(ctl.Label))
	} else {
		b.WriteString(disabledButtonStyle.Render(ctl.Label))
	}
	b.WriteString("\n")

	if a.deps.History != nil && a.ui.HistoryLimit > 0 {
		b.WriteString("\n" + titleStyle.Render("Recent submissions") + "\n")
		if len(a.history) == 0 {
			b.WriteString(mutedStyle.Render("Nothing registered yet.") + "\n")
		}
		for _, s := range a.history {
			b.WriteString(a.renderSubmission(s) + "\n")
		}
	}

	b.WriteString("\n" + helpLine(a.keys.Submit, a.keys.Back, a.keys.ForceQuit))
	return b.String()
}

func (a *App) renderSubmission(s repository.Submission) string {
	mark := okStyle.Render("ok  ")
	if s.Outcome == repository.OutcomeFailed {
		mark = errorStyle.Render("fail")
	}
	when := s.CreatedAt.Local().Format("2006-01-02 15:04")
	prefix := fmt.Sprintf("%s  %s  ", mark, mutedStyle.Render(when))
	avail := a.width - 28
	if avail < 8 {
		avail = 8
	}
	return prefix + ansi.Truncate(s.Title, avail, "…")
}
