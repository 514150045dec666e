package persist

import (
	"context"
	"fmt"

	"github.com/crowdclash/server/internal/core/event"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JournalRepo records matches and their domain events.
type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// StartMatch inserts the match header row.
func (r *JournalRepo) StartMatch(ctx context.Context, id uuid.UUID, scenario string, seed int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO matches (id, scenario, seed) VALUES ($1, $2, $3)`,
		id, scenario, seed,
	)
	if err != nil {
		return fmt.Errorf("start match: %w", err)
	}
	return nil
}

// AppendEvents writes a batch of event records in a single transaction.
func (r *JournalRepo) AppendEvents(ctx context.Context, id uuid.UUID, recs []event.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(
			`INSERT INTO match_events (match_id, tick, kind, actor, target, name, count, other, outcome, x, z)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			id, int64(rec.Tick), rec.Kind, rec.Actor, rec.Target, rec.Name,
			rec.Count, rec.Other, rec.Outcome, rec.X, rec.Z,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range recs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("journal insert: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("journal batch: %w", err)
	}

	return tx.Commit(ctx)
}

// FinishMatch stamps the end of a match. winner is empty for a draw or an
// unfinished match.
func (r *JournalRepo) FinishMatch(ctx context.Context, id uuid.UUID, ticks uint64, winner string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE matches SET finished_at = now(), ticks = $2, winner = NULLIF($3, '') WHERE id = $1`,
		id, int64(ticks), winner,
	)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	return nil
}
