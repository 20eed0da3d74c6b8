package repository

import (
	"context"
	"database/sql"
)

// SubmissionRepo handles the local registration history.
type SubmissionRepo struct {
	db *sql.DB
}

func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{db: db} }

func (r *SubmissionRepo) Add(ctx context.Context, s Submission) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO submissions(id, title, outcome, code, message, created_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`, s.ID, s.Title, string(s.Outcome), s.Code, s.Message, s.CreatedAt)
	return err
}

// Recent returns up to limit submissions, newest first.
func (r *SubmissionRepo) Recent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, title, outcome, code, message, created_at
	FROM submissions
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		var s Submission
		var outcome string
		if err := rows.Scan(&s.ID, &s.Title, &outcome, &s.Code, &s.Message, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Outcome = Outcome(outcome)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SubmissionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n)
	return n, err
}
