// Package register implements the inventory registration flow:
// validate the title, run one create call, report the outcome.
package register

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jask/stockterm/internal/api"
)

// Notice texts shown to the user on terminal transitions.
const (
	NoticeInputError    = "Input error"
	NoticeTitleRequired = "Please enter an inventory title"
	NoticeSucceeded     = "Registration succeeded"
	NoticeFailed        = "Registration failed"
	LabelIdle           = "Register"
	LabelSubmitting     = "Registering..."
)

// ErrInFlight is returned when Submit is called while a create call is running.
var ErrInFlight = errors.New("register: submission already in flight")

// Creator issues the create call. api.Client satisfies it.
type Creator interface {
	CreateInventory(ctx context.Context, title string) (api.CreateInventoryResponse, error)
}

// Presenter shows a notice to the user.
type Presenter interface {
	Present(title, message string)
}

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
)

// Control is the submit button as the flow sees it.
type Control struct {
	Enabled bool
	Label   string
}

// Flow owns the title field and submit control of the register screen.
// It is safe for concurrent use; Submit normally runs off the UI loop.
type Flow struct {
	creator   Creator
	presenter Presenter
	validate  *validator.Validate

	mu      sync.Mutex
	state   State
	title   *string
	control Control
}

func New(creator Creator, presenter Presenter) *Flow {
	return &Flow{
		creator:   creator,
		presenter: presenter,
		validate:  validator.New(),
		state:     StateIdle,
		control:   Control{Enabled: true, Label: LabelIdle},
	}
}

// SetTitle replaces the field value.
func (f *Flow) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = &title
}

// ClearTitle marks the field as holding no value at all.
func (f *Flow) ClearTitle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = nil
}

// Title returns the field value and whether one is present.
func (f *Flow) Title() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.title == nil {
		return "", false
	}
	return *f.title, true
}

func (f *Flow) Control() Control {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit runs one registration. It blocks for the duration of the create call.
// Validation failures are reported through the presenter and return nil; the
// create error, if any, is returned after it has been presented.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrInFlight
	}
	if f.title == nil || f.validate.Var(*f.title, "required") != nil {
		f.mu.Unlock()
		f.presenter.Present(NoticeInputError, NoticeTitleRequired)
		return nil
	}
	title := *f.title
	f.state = StateSubmitting
	f.control = Control{Enabled: false, Label: LabelSubmitting}
	f.mu.Unlock()

	defer f.restore()

	if _, err := f.creator.CreateInventory(ctx, title); err != nil {
		f.presenter.Present(NoticeFailed, describe(err))
		return err
	}

	f.mu.Lock()
	cleared := ""
	f.title = &cleared
	f.mu.Unlock()
	f.presenter.Present(NoticeSucceeded, "")
	return nil
}

func (f *Flow) restore() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateIdle
	f.control = Control{Enabled: true, Label: LabelIdle}
}

func describe(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%T", err)
}
