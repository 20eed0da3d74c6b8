package tui

import (
	"context"
	"errors"
	"log"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/stockterm/internal/api"
	"github.com/jask/stockterm/internal/config"
	"github.com/jask/stockterm/internal/database/repository"
	"github.com/jask/stockterm/internal/register"
	"github.com/jask/stockterm/internal/service"
)

// InventoryGetter fetches a single inventory. api.Client satisfies it.
type InventoryGetter interface {
	GetInventory(ctx context.Context, id *int64) (api.Inventory, error)
}

// HistoryReader lists recent submissions. service.RecordingCreator satisfies it.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]repository.Submission, error)
}

type Deps struct {
	Catalog     *service.Catalog
	Inventories InventoryGetter
	Creator     register.Creator
	History     HistoryReader // optional
}

// App ties together the list, detail and register screens.
type App struct {
	ctx   context.Context
	deps  Deps
	ui    config.UIConfig
	keys  keyMap
	state appState
	width int

	// list
	items     []api.Inventory
	cursor    int
	filter    textinput.Model
	filtering bool

	// detail
	detailID  int64
	detail    *api.Inventory
	detailErr error
	loading   bool

	// register
	flow    *register.Flow
	notices *noticeQueue
	title   textinput.Model
	pending bool
	history []repository.Submission

	alerts []notice
}

type appState string

const (
	viewList     appState = "list"
	viewDetail   appState = "detail"
	viewRegister appState = "register"
)

const defaultWidth = 80

func New(ctx context.Context, ui config.UIConfig, deps Deps) *App {
	notices := &noticeQueue{}
	return &App{
		ctx:     ctx,
		deps:    deps,
		ui:      ui,
		keys:    defaultKeys(),
		state:   viewList,
		width:   defaultWidth,
		filter:  newInput("/ ", "filter by title"),
		flow:    register.New(deps.Creator, notices),
		notices: notices,
		title:   newInput("Title: ", "inventory title"),
	}
}

func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.refresh(), a.loadHistory())
}

func (a *App) refresh() tea.Cmd {
	catalog, ctx := a.deps.Catalog, a.ctx
	if catalog == nil {
		return nil
	}
	return func() tea.Msg {
		// failures are logged by the catalog; the stale list is kept
		items, _ := catalog.Refresh(ctx)
		return inventoriesMsg(items)
	}
}

func (a *App) loadDetail(id int64) tea.Cmd {
	getter, ctx := a.deps.Inventories, a.ctx
	return func() tea.Msg {
		inv, err := getter.GetInventory(ctx, &id)
		if err != nil {
			return detailMsg{id: id, err: err}
		}
		return detailMsg{id: id, inv: &inv}
	}
}

func (a *App) loadHistory() tea.Cmd {
	history, ctx, limit := a.deps.History, a.ctx, a.ui.HistoryLimit
	if history == nil || limit <= 0 {
		return nil
	}
	return func() tea.Msg {
		subs, err := history.Recent(ctx, limit)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(subs)
	}
}

func (a *App) submit() tea.Cmd {
	flow, notices, ctx := a.flow, a.notices, a.ctx
	a.pending = true
	return func() tea.Msg {
		err := flow.Submit(ctx)
		return submitDoneMsg{notices: notices.drain(), err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case inventoriesMsg:
		a.items = m
		a.clampCursor()
	case detailMsg:
		if m.id != a.detailID {
			return a, nil
		}
		a.loading = false
		a.detail, a.detailErr = m.inv, m.err
	case submitDoneMsg:
		a.pending = false
		if m.err != nil && !errors.Is(m.err, register.ErrInFlight) {
			log.Printf("[register] create failed: %v", m.err)
		}
		if title, ok := a.flow.Title(); ok && title == "" {
			a.title.SetValue("")
		}
		a.alerts = append(a.alerts, m.notices...)
		return a, a.loadHistory()
	case historyMsg:
		a.history = m
	case errMsg:
		log.Printf("[tui] %v", m.error)
	case tea.KeyMsg:
		return a.handleKey(m)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(m, a.keys.ForceQuit) {
		return a, tea.Quit
	}
	if len(a.alerts) > 0 {
		if key.Matches(m, a.keys.Dismiss) {
			a.alerts = a.alerts[1:]
		}
		return a, nil
	}
	switch a.state {
	case viewRegister:
		return a.updateRegister(m)
	case viewDetail:
		return a.updateDetail(m)
	default:
		return a.updateList(m)
	}
}

// showList switches to the list; the list refetches whenever it becomes visible.
func (a *App) showList() tea.Cmd {
	a.state = viewList
	return a.refresh()
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewRegister:
		body = a.renderRegister()
	case viewDetail:
		body = a.renderDetail()
	default:
		body = a.renderList()
	}
	if len(a.alerts) > 0 {
		body += "\n\n" + renderAlert(a.alerts[0])
	}
	return body
}

func renderAlert(n notice) string {
	out := titleStyle.Render(n.Title)
	if n.Message != "" {
		out += "\n" + n.Message
	}
	return alertStyle.Render(out + "\n\n[enter] OK")
}

type inventoriesMsg []api.Inventory

type detailMsg struct {
	id  int64
	inv *api.Inventory
	err error
}

type submitDoneMsg struct {
	notices []notice
	err     error
}

type historyMsg []repository.Submission

type errMsg struct{ error }
