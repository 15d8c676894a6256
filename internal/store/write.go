package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/logicgraph/internal/engine"
	"github.com/roach88/logicgraph/internal/snapshot"
)

// ErrUnknownRun is returned when an update report names a run that was
// never started.
var ErrUnknownRun = errors.New("unknown run")

// WriteSnapshot archives encoded snapshot bytes under name.
//
// The bytes are decoded first so that corrupt or incompatible snapshots
// never reach the archive. Identical content under the same name is
// stored once: the second write returns the existing record with
// inserted=false.
func (s *Store) WriteSnapshot(ctx context.Context, name string, data []byte) (SnapshotInfo, bool, error) {
	if name == "" {
		return SnapshotInfo{}, false, fmt.Errorf("write snapshot: empty name")
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return SnapshotInfo{}, false, fmt.Errorf("write snapshot %q: %w", name, err)
	}
	hash := snapshot.Hash(data)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotInfo{}, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanSnapshotInfo(tx.QueryRowContext(ctx, `
		SELECT id, name, hash, format_version, engine_version, node_count, link_count, seq
		FROM snapshots
		WHERE name = ? AND hash = ?
	`, name, hash))
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return SnapshotInfo{}, false, fmt.Errorf("lookup snapshot %q: %w", name, err)
	}

	seq, err := nextSeq(ctx, tx, "snapshots")
	if err != nil {
		return SnapshotInfo{}, false, err
	}
	info := SnapshotInfo{
		ID:            s.ids.Generate(),
		Name:          name,
		Hash:          hash,
		FormatVersion: snap.FormatVersion,
		EngineVersion: snap.EngineVersion,
		NodeCount:     len(snap.Nodes),
		LinkCount:     len(snap.Links),
		Seq:           seq,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots
			(id, name, hash, format_version, engine_version, node_count, link_count, data, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, hash) DO NOTHING
	`, info.ID, info.Name, info.Hash, info.FormatVersion, info.EngineVersion,
		info.NodeCount, info.LinkCount, data, info.Seq)
	if err != nil {
		return SnapshotInfo{}, false, fmt.Errorf("insert snapshot %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return SnapshotInfo{}, false, fmt.Errorf("commit snapshot %q: %w", name, err)
	}
	return info, true, nil
}

// StartRun opens a new update journal. snapshotID may be empty when the
// run does not start from an archived graph.
func (s *Store) StartRun(ctx context.Context, name, snapshotID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "runs")
	if err != nil {
		return "", err
	}
	var ref sql.NullString
	if snapshotID != "" {
		ref = sql.NullString{String: snapshotID, Valid: true}
	}
	id := s.ids.Generate()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, snapshot_id, seq) VALUES (?, ?, ?, ?)
	`, id, name, ref, seq); err != nil {
		return "", fmt.Errorf("insert run %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run %q: %w", name, err)
	}
	return id, nil
}

// WriteUpdateReport appends one update report to a run. The report is
// stored as canonical JSON keyed by (run, frame); writing the same frame
// twice keeps the first record.
func (s *Store) WriteUpdateReport(ctx context.Context, runID string, r *engine.UpdateReport) error {
	if r == nil {
		return fmt.Errorf("write update report: nil report")
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("write update report: %w %q", ErrUnknownRun, runID)
	}
	if err != nil {
		return fmt.Errorf("lookup run %q: %w", runID, err)
	}

	body, err := snapshot.Canonical(r)
	if err != nil {
		return fmt.Errorf("encode update report frame %d: %w", r.Frame, err)
	}
	failed := ""
	if r.Failed != nil {
		failed = r.Failed.Name
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO update_reports
			(run_id, frame, executed, skipped, link_activations, failed_node, report)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, frame) DO NOTHING
	`, runID, int64(r.Frame), len(r.Executed), len(r.Skipped), r.LinkActivations, failed, string(body))
	if err != nil {
		return fmt.Errorf("insert update report frame %d: %w", r.Frame, err)
	}
	return nil
}
