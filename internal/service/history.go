package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/jask/stockterm/internal/api"
	"github.com/jask/stockterm/internal/database"
	"github.com/jask/stockterm/internal/database/repository"
	"github.com/jask/stockterm/internal/register"
)

var _ register.Creator = (*RecordingCreator)(nil)

// RecordingCreator writes every create attempt to the submission history.
// The wrapped result is returned unchanged; history write failures are only logged.
type RecordingCreator struct {
	Next        register.Creator
	Submissions *repository.SubmissionRepo
	Logger      *log.Logger
}

func (r *RecordingCreator) CreateInventory(ctx context.Context, title string) (api.CreateInventoryResponse, error) {
	resp, err := r.Next.CreateInventory(ctx, title)

	sub := repository.Submission{
		ID:        uuid.NewString(),
		Title:     title,
		Outcome:   repository.OutcomeSucceeded,
		Code:      resp.Code,
		Message:   resp.Message,
		CreatedAt: database.Now(),
	}
	if err != nil {
		sub.Outcome = repository.OutcomeFailed
		sub.Message = err.Error()
		var te *api.TransportError
		if errors.As(err, &te) {
			sub.Code = te.StatusCode
		}
	}
	if werr := r.Submissions.Add(ctx, sub); werr != nil {
		r.logger().Printf("[history] record %q: %v", title, werr)
	}
	return resp, err
}

// Recent returns the latest submissions for display.
func (r *RecordingCreator) Recent(ctx context.Context, limit int) ([]repository.Submission, error) {
	return r.Submissions.Recent(ctx, limit)
}

func (r *RecordingCreator) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
