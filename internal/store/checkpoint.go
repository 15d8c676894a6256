package store

import (
	"context"
	"fmt"

	"github.com/roach88/logicgraph/internal/engine"
)

// Checkpoint saves e and archives the snapshot under name.
func (s *Store) Checkpoint(ctx context.Context, e *engine.Engine, name string) (SnapshotInfo, error) {
	data, err := e.Save()
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("checkpoint %q: %w", name, err)
	}
	info, _, err := s.WriteSnapshot(ctx, name, data)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("checkpoint %q: %w", name, err)
	}
	return info, nil
}

// Restore loads the latest snapshot archived under name into e.
// Returns an error wrapping sql.ErrNoRows if nothing was archived.
// On a load failure e keeps its previous graph.
func (s *Store) Restore(ctx context.Context, e *engine.Engine, name string, r engine.Resolver) (SnapshotInfo, error) {
	info, data, err := s.LatestSnapshot(ctx, name)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("restore %q: %w", name, err)
	}
	if err := e.Load(data, r); err != nil {
		return SnapshotInfo{}, fmt.Errorf("restore %q: %w", name, err)
	}
	return info, nil
}

// Journal records the update reports of one run.
type Journal struct {
	store *Store
	runID string
}

// NewJournal starts a run and returns its journal.
func (s *Store) NewJournal(ctx context.Context, name, snapshotID string) (*Journal, error) {
	id, err := s.StartRun(ctx, name, snapshotID)
	if err != nil {
		return nil, err
	}
	return &Journal{store: s, runID: id}, nil
}

// RunID returns the id of the journaled run.
func (j *Journal) RunID() string {
	return j.runID
}

// Record stores the engine's last update report. It does nothing when
// reporting is disabled or no update has run.
func (j *Journal) Record(ctx context.Context, e *engine.Engine) error {
	r := e.LastReport()
	if r == nil {
		return nil
	}
	return j.store.WriteUpdateReport(ctx, j.runID, r)
}
