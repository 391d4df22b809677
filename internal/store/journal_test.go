package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynweather/internal/engine"
)

var journalStart = time.Date(2026, time.October, 31, 10, 0, 0, 0, time.UTC)

func sampleCycle() []engine.Transition {
	return []engine.Transition{
		{Seq: 1, CycleID: "cycle-1", From: engine.PhaseIdle, To: engine.PhaseShowing, At: journalStart, Reason: engine.ReasonWeather, Visuals: []string{"effect[0]", "snow"}},
		{Seq: 2, CycleID: "cycle-1", From: engine.PhaseShowing, To: engine.PhaseCooldown, At: journalStart.Add(2 * time.Minute), Reason: engine.ReasonDuration},
		{Seq: 3, CycleID: "cycle-1", From: engine.PhaseCooldown, To: engine.PhaseIdle, At: journalStart.Add(3 * time.Minute), Reason: engine.ReasonCooldown},
		{Seq: 4, CycleID: "cycle-2", From: engine.PhaseIdle, To: engine.PhaseShowing, At: journalStart.Add(3 * time.Minute), Reason: engine.ReasonRedraw, Visuals: []string{"snow"}},
	}
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordTransition_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	for _, tr := range sampleCycle() {
		require.NoError(t, s.RecordTransition(ctx, tr))
	}

	records, err := s.ListTransitions(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 4)

	for i, rec := range records {
		want := sampleCycle()[i]
		if want.Visuals == nil {
			want.Visuals = []string{}
		}
		assert.Equal(t, s.RunID(), rec.RunID)
		assert.Equal(t, want.Seq, rec.Seq)
		assert.Equal(t, want.CycleID, rec.CycleID)
		assert.Equal(t, want.From, rec.From)
		assert.Equal(t, want.To, rec.To)
		assert.True(t, want.At.Equal(rec.At), "at: want %v got %v", want.At, rec.At)
		assert.Equal(t, want.Reason, rec.Reason)
		assert.Equal(t, want.Visuals, rec.Visuals)
	}
}

func TestRecordTransition_Idempotent(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	tr := sampleCycle()[0]

	require.NoError(t, s.RecordTransition(ctx, tr))
	require.NoError(t, s.RecordTransition(ctx, tr))

	records, err := s.ListTransitions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListTransitions_ByCycle(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	for _, tr := range sampleCycle() {
		require.NoError(t, s.RecordTransition(ctx, tr))
	}

	records, err := s.ListTransitions(ctx, "cycle-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, engine.PhaseIdle, records[2].To)

	records, err = s.ListTransitions(ctx, "cycle-9")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListTransitions_SeveralRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.RecordTransition(ctx, sampleCycle()[0]))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.RecordTransition(ctx, sampleCycle()[0]))

	assert.NotEqual(t, first.RunID(), second.RunID())

	records, err := second.ListTransitions(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 2, "seq restarts per run without colliding")
	assert.Equal(t, first.RunID(), records[0].RunID)
	assert.Equal(t, second.RunID(), records[1].RunID)
}

func TestStore_IsRecorder(t *testing.T) {
	var _ engine.Recorder = (*Store)(nil)
}

func TestStore_RecordsEngineCycle(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	eng := engine.New(engine.Settings{}, nil,
		engine.WithRecorder(s),
		engine.WithCycleIDGenerator(engine.NewFixedGenerator("fixed")),
	)
	defer eng.Close()
	eng.Start()
	eng.DeliverWeather(engine.WeatherReport{Code: 500}, nil)
	eng.Drain(ctx)

	records, err := s.ListTransitions(ctx, "fixed")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, engine.PhaseShowing, records[0].To)
	assert.Equal(t, []string{"rain"}, records[0].Visuals)
}
