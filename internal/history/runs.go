package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vidbatch/internal/report"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Item is one persisted per-video outcome.
type Item struct {
	Operation report.Operation `json:"operation"`
	report.Item
}

// Run is a persisted pipeline run.
type Run struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Items      []Item    `json:"items,omitempty"`
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Begin records a run as running.
func (s *Store) Begin(ctx context.Context, id, kind string, startedAt time.Time) error {
	err := s.exec(ctx,
		`INSERT INTO runs (id, kind, status, started_at) VALUES (?, ?, ?, ?)`,
		id, kind, StatusRunning, formatTime(startedAt),
	)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", id, err)
	}
	return nil
}

// Finish stores the final status and every report item of a run.
func (s *Store) Finish(ctx context.Context, id, status string, runErr error, finishedAt time.Time, reports []report.Report) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
			status, errText, formatTime(finishedAt), id,
		)
		if err != nil {
			return fmt.Errorf("update run %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update run %s: %w", id, sql.ErrNoRows)
		}

		seq := 0
		for _, rep := range reports {
			for _, item := range rep.Items {
				seq++
				_, err := tx.ExecContext(ctx,
					`INSERT INTO run_items (run_id, seq, operation, video, subtitle, output, status, error, error_kind, frames, duration_ns)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					id, seq, string(rep.Operation), item.Video, item.Subtitle, item.Output,
					string(item.Status), item.Error, item.ErrorKind, item.Frames, int64(item.Duration),
				)
				if err != nil {
					return fmt.Errorf("insert run item: %w", err)
				}
			}
		}
		return tx.Commit()
	})
}

// List returns the most recent runs first, without their items.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, status, error, started_at, finished_at FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns a run with its items, or nil when id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, error, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT operation, video, subtitle, output, status, error, error_kind, frames, duration_ns
		 FROM run_items WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load run items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			item     Item
			op       string
			status   string
			duration int64
		)
		if err := rows.Scan(&op, &item.Video, &item.Subtitle, &item.Output, &status,
			&item.Error, &item.ErrorKind, &item.Frames, &duration); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.Operation = report.Operation(op)
		item.Status = report.Status(status)
		item.Duration = time.Duration(duration)
		run.Items = append(run.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		started  string
		finished string
	)
	if err := row.Scan(&run.ID, &run.Kind, &run.Status, &run.Error, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}
