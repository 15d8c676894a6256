package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/logicgraph/internal/engine"
)

// SnapshotInfo is the archive metadata of one snapshot.
type SnapshotInfo struct {
	ID            string
	Name          string
	Hash          string
	FormatVersion string
	EngineVersion string
	NodeCount     int
	LinkCount     int
	Seq           int64
}

// ReportSummary is the indexed part of one journaled update.
type ReportSummary struct {
	Frame           uint64
	Executed        int
	Skipped         int
	LinkActivations int
	FailedNode      string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotInfo(row rowScanner) (SnapshotInfo, error) {
	var info SnapshotInfo
	err := row.Scan(&info.ID, &info.Name, &info.Hash, &info.FormatVersion,
		&info.EngineVersion, &info.NodeCount, &info.LinkCount, &info.Seq)
	return info, err
}

// ReadSnapshot returns the metadata and bytes of the snapshot with id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (SnapshotInfo, []byte, error) {
	var info SnapshotInfo
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, hash, format_version, engine_version, node_count, link_count, seq, data
		FROM snapshots
		WHERE id = ?
	`, id).Scan(&info.ID, &info.Name, &info.Hash, &info.FormatVersion,
		&info.EngineVersion, &info.NodeCount, &info.LinkCount, &info.Seq, &data)
	if err != nil {
		return SnapshotInfo{}, nil, err
	}
	return info, data, nil
}

// LatestSnapshot returns the most recently archived snapshot under name.
// Returns sql.ErrNoRows if none exists.
func (s *Store) LatestSnapshot(ctx context.Context, name string) (SnapshotInfo, []byte, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM snapshots
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name).Scan(&id)
	if err != nil {
		return SnapshotInfo{}, nil, err
	}
	return s.ReadSnapshot(ctx, id)
}

// ListSnapshots returns snapshot metadata in archive order.
// An empty name lists every snapshot.
func (s *Store) ListSnapshots(ctx context.Context, name string) ([]SnapshotInfo, error) {
	query := `
		SELECT id, name, hash, format_version, engine_version, node_count, link_count, seq
		FROM snapshots`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		info, err := scanSnapshotInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// ReadReportSummaries returns the indexed columns of a run's reports in
// frame order.
func (s *Store) ReadReportSummaries(ctx context.Context, runID string) ([]ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, executed, skipped, link_activations, failed_node
		FROM update_reports
		WHERE run_id = ?
		ORDER BY frame ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query update reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var r ReportSummary
		var frame int64
		if err := rows.Scan(&frame, &r.Executed, &r.Skipped, &r.LinkActivations, &r.FailedNode); err != nil {
			return nil, fmt.Errorf("scan update report: %w", err)
		}
		r.Frame = uint64(frame)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate update reports: %w", err)
	}
	return out, nil
}

// ReadUpdateReports returns the full reports of a run in frame order.
func (s *Store) ReadUpdateReports(ctx context.Context, runID string) ([]engine.UpdateReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report FROM update_reports
		WHERE run_id = ?
		ORDER BY frame ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query update reports: %w", err)
	}
	defer rows.Close()

	var out []engine.UpdateReport
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan update report: %w", err)
		}
		var r engine.UpdateReport
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("unmarshal update report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate update reports: %w", err)
	}
	return out, nil
}
