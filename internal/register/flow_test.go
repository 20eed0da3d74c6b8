package register

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/stockterm/internal/api"
)

// mockCreator records create calls and returns a configured outcome.
type mockCreator struct {
	mu        sync.Mutex
	calls     int
	lastTitle *string
	err       error
	panicWith any
	block     chan struct{}
	started   chan struct{}
}

func (m *mockCreator) CreateInventory(ctx context.Context, title string) (api.CreateInventoryResponse, error) {
	m.mu.Lock()
	m.calls++
	m.lastTitle = &title
	err, panicWith, block, started := m.err, m.panicWith, m.block, m.started
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if panicWith != nil {
		panic(panicWith)
	}
	if err != nil {
		return api.CreateInventoryResponse{}, err
	}
	return api.CreateInventoryResponse{Code: 200, Status: "success", Message: "created"}, nil
}

func (m *mockCreator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockPresenter keeps the most recent notice.
type mockPresenter struct {
	mu          sync.Mutex
	count       int
	lastTitle   *string
	lastMessage *string
}

func (m *mockPresenter) Present(title, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	m.lastTitle = &title
	m.lastMessage = &message
}

func newTestFlow() (*Flow, *mockCreator, *mockPresenter) {
	creator := &mockCreator{}
	presenter := &mockPresenter{}
	return New(creator, presenter), creator, presenter
}

func TestNewFlowStartsIdle(t *testing.T) {
	flow, _, _ := newTestFlow()

	require.Equal(t, StateIdle, flow.State())
	require.Equal(t, Control{Enabled: true, Label: LabelIdle}, flow.Control())
	_, ok := flow.Title()
	require.False(t, ok)
}

func TestSubmitEmptyTitleShowsInputError(t *testing.T) {
	flow, creator, presenter := newTestFlow()
	flow.SetTitle("")

	require.NoError(t, flow.Submit(context.Background()))

	require.Equal(t, 0, creator.Calls())
	require.Equal(t, NoticeInputError, *presenter.lastTitle)
	require.Equal(t, NoticeTitleRequired, *presenter.lastMessage)
	title, ok := flow.Title()
	require.True(t, ok)
	require.Equal(t, "", title)
	require.Equal(t, StateIdle, flow.State())
}

func TestSubmitAbsentTitleShowsInputError(t *testing.T) {
	flow, creator, presenter := newTestFlow()
	flow.ClearTitle()

	require.NoError(t, flow.Submit(context.Background()))

	require.Equal(t, 0, creator.Calls())
	require.Equal(t, NoticeInputError, *presenter.lastTitle)
	require.Equal(t, NoticeTitleRequired, *presenter.lastMessage)
	_, ok := flow.Title()
	require.False(t, ok)
}

func TestSubmitSuccessClearsField(t *testing.T) {
	flow, creator, presenter := newTestFlow()
	flow.SetTitle("テスト在庫")

	require.NoError(t, flow.Submit(context.Background()))

	require.Equal(t, 1, creator.Calls())
	require.Equal(t, "テスト在庫", *creator.lastTitle)
	require.Equal(t, NoticeSucceeded, *presenter.lastTitle)
	require.Equal(t, "", *presenter.lastMessage)
	title, ok := flow.Title()
	require.True(t, ok)
	require.Equal(t, "", title)
	require.Equal(t, Control{Enabled: true, Label: LabelIdle}, flow.Control())
}

func TestSubmitFailureKeepsField(t *testing.T) {
	flow, creator, presenter := newTestFlow()
	creator.err = &api.TransportError{Op: "create inventory", StatusCode: 500}
	flow.SetTitle("テスト在庫")

	err := flow.Submit(context.Background())
	var transportErr *api.TransportError
	require.ErrorAs(t, err, &transportErr)

	require.Equal(t, 1, creator.Calls())
	require.Equal(t, NoticeFailed, *presenter.lastTitle)
	require.NotEmpty(t, *presenter.lastMessage)
	title, _ := flow.Title()
	require.Equal(t, "テスト在庫", title)
	require.Equal(t, Control{Enabled: true, Label: LabelIdle}, flow.Control())
	require.Equal(t, StateIdle, flow.State())
}

func TestFailureMessageFallsBackToErrorType(t *testing.T) {
	flow, creator, presenter := newTestFlow()
	creator.err = errors.New("")
	flow.SetTitle("x")

	require.Error(t, flow.Submit(context.Background()))
	require.NotEmpty(t, *presenter.lastMessage)
}

func TestSequentialSubmissions(t *testing.T) {
	flow, creator, presenter := newTestFlow()

	flow.SetTitle("in1")
	require.NoError(t, flow.Submit(context.Background()))
	flow.SetTitle("in2")
	require.NoError(t, flow.Submit(context.Background()))

	require.Equal(t, 2, creator.Calls())
	require.Equal(t, "in2", *creator.lastTitle)
	require.Equal(t, 2, presenter.count)
}

func TestWhitespaceTitleIsSubmitted(t *testing.T) {
	flow, creator, _ := newTestFlow()
	flow.SetTitle(" ")

	require.NoError(t, flow.Submit(context.Background()))
	require.Equal(t, 1, creator.Calls())
	require.Equal(t, " ", *creator.lastTitle)
}

func TestControlDisabledWhileSubmitting(t *testing.T) {
	flow, creator, presenter := newTestFlow()
	creator.block = make(chan struct{})
	creator.started = make(chan struct{})
	flow.SetTitle("pens")

	done := make(chan error, 1)
	go func() { done <- flow.Submit(context.Background()) }()

	select {
	case <-creator.started:
	case <-time.After(time.Second):
		t.Fatal("create call did not start")
	}
	require.Equal(t, StateSubmitting, flow.State())
	require.Equal(t, Control{Enabled: false, Label: LabelSubmitting}, flow.Control())

	require.ErrorIs(t, flow.Submit(context.Background()), ErrInFlight)
	require.Equal(t, 1, creator.Calls())
	require.Equal(t, 0, presenter.count)

	close(creator.block)
	require.NoError(t, <-done)
	require.Equal(t, Control{Enabled: true, Label: LabelIdle}, flow.Control())
	require.Equal(t, 1, presenter.count)
}

func TestControlRestoredAfterPanic(t *testing.T) {
	flow, creator, _ := newTestFlow()
	creator.panicWith = "boom"
	flow.SetTitle("pens")

	require.PanicsWithValue(t, "boom", func() { _ = flow.Submit(context.Background()) })
	require.Equal(t, StateIdle, flow.State())
	require.Equal(t, Control{Enabled: true, Label: LabelIdle}, flow.Control())
	title, _ := flow.Title()
	require.Equal(t, "pens", title)
}

func TestMalformedAcknowledgmentIsAFailure(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"error":"nope"}`)
	}))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, "token", api.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	presenter := &mockPresenter{}
	flow := New(client, presenter)
	flow.SetTitle("テスト在庫")

	err = flow.Submit(context.Background())
	var decodeErr *api.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	require.Equal(t, int32(1), posts.Load())
	require.Equal(t, NoticeFailed, *presenter.lastTitle)
	require.NotEmpty(t, *presenter.lastMessage)
	title, ok := flow.Title()
	require.True(t, ok)
	require.Equal(t, "テスト在庫", title)
	require.Equal(t, Control{Enabled: true, Label: LabelIdle}, flow.Control())
}
