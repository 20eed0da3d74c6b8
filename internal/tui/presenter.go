package tui

import (
	"sync"

	"github.com/jask/stockterm/internal/register"
)

type notice struct {
	Title   string
	Message string
}

// noticeQueue collects notices raised off the UI loop. The submit command
// drains it and hands the notices to Update as a message.
type noticeQueue struct {
	mu      sync.Mutex
	pending []notice
}

var _ register.Presenter = (*noticeQueue)(nil)

func (q *noticeQueue) Present(title, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, notice{Title: title, Message: message})
}

func (q *noticeQueue) drain() []notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}
