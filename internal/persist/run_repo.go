package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Outcomes recorded when a run ends without a level result.
const (
	OutcomeAborted = "aborted"  // interrupted by a signal
	OutcomeTimeout = "timeout"  // max_ticks reached
	OutcomeRetired = "finished" // plan ended without signalling a result
)

// ErrRunNotOpen is returned by Finish for unknown or already finished runs.
var ErrRunNotOpen = errors.New("run not open")

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunRepo journals level runs.
type RunRepo struct {
	db execer
}

func NewRunRepo(j *Journal) *RunRepo {
	return &RunRepo{db: j.pool}
}

// Start records a run as begun.
func (r *RunRepo) Start(ctx context.Context, id uuid.UUID, level string, seed int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO level_runs (id, level, seed) VALUES ($1, $2, $3)`,
		id, level, seed,
	)
	if err != nil {
		return fmt.Errorf("start run %s: %w", id, err)
	}
	return nil
}

// Finish stamps the outcome and tick count on a started run.
func (r *RunRepo) Finish(ctx context.Context, id uuid.UUID, outcome string, ticks uint64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE level_runs SET finished_at = now(), outcome = $2, ticks = $3
		 WHERE id = $1 AND finished_at IS NULL`,
		id, outcome, int64(ticks),
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotOpen)
	}
	return nil
}
