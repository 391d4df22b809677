package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/dynweather/internal/engine"
)

// Record is a journaled transition and the run that produced it.
type Record struct {
	RunID string
	engine.Transition
}

// RecordTransition appends t under this Store's run.
// Uses ON CONFLICT(run_id, seq) DO NOTHING, so recording the same
// transition twice is a no-op.
func (s *Store) RecordTransition(ctx context.Context, t engine.Transition) error {
	visuals := t.Visuals
	if visuals == nil {
		visuals = []string{}
	}
	visualsJSON, err := json.Marshal(visuals)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transitions
		(run_id, seq, cycle_id, from_phase, to_phase, at, reason, visuals)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		s.runID,
		t.Seq,
		t.CycleID,
		t.From.String(),
		t.To.String(),
		t.At.UTC().Format(time.RFC3339Nano),
		t.Reason,
		string(visualsJSON),
	)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

// ListTransitions returns journaled transitions in recording order. An
// empty cycleID returns every transition of every run.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListTransitions(ctx context.Context, cycleID string) ([]Record, error) {
	query := `
		SELECT run_id, seq, cycle_id, from_phase, to_phase, at, reason, visuals
		FROM transitions
	`
	var args []any
	if cycleID != "" {
		query += ` WHERE cycle_id = ?`
		args = append(args, cycleID)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec                  Record
		from, to, at, visual string
	)
	if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.CycleID, &from, &to, &at, &rec.Reason, &visual); err != nil {
		return Record{}, fmt.Errorf("scan transition: %w", err)
	}

	var err error
	if rec.From, err = engine.ParsePhase(from); err != nil {
		return Record{}, fmt.Errorf("scan transition %d: %w", rec.Seq, err)
	}
	if rec.To, err = engine.ParsePhase(to); err != nil {
		return Record{}, fmt.Errorf("scan transition %d: %w", rec.Seq, err)
	}
	if rec.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return Record{}, fmt.Errorf("scan transition %d: %w", rec.Seq, err)
	}
	if err := json.Unmarshal([]byte(visual), &rec.Visuals); err != nil {
		return Record{}, fmt.Errorf("scan transition %d visuals: %w", rec.Seq, err)
	}
	return rec, nil
}
