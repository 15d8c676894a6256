package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/logicgraph/internal/compiler"
	"github.com/roach88/logicgraph/internal/engine"
	"github.com/roach88/logicgraph/internal/store"
	"github.com/roach88/logicgraph/internal/timer"
)

// Runtime is a configured engine with its collaborators.
type Runtime struct {
	Config   *Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Registry *compiler.Registry

	// Store is nil when no store path is configured.
	Store *store.Store

	// Restored describes the snapshot the graph came from, if any.
	Restored *store.SnapshotInfo
}

// EngineOptions returns the engine options described by c.
func (c *Config) EngineOptions(logger *slog.Logger, clock timer.Clock) []engine.Option {
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithDirtyTracking(c.DirtyTrackingEnabled()),
		engine.WithUpdateReport(c.Engine.UpdateReport),
	}
	if clock != nil {
		opts = append(opts, engine.WithTimerClock(clock))
	}
	return opts
}

// Open builds a Runtime. Logs go to w. A nil registry gets the builtin
// scripts.
//
// The initial graph is the configured snapshot when the store holds one,
// otherwise the graph directory. With neither, the engine starts empty.
func (c *Config) Open(ctx context.Context, w io.Writer, r *compiler.Registry) (*Runtime, error) {
	if r == nil {
		r = compiler.NewRegistry()
	}
	logger := NewLogger(c.Log.Level, c.Log.Format, w)
	rt := &Runtime{
		Config:   c,
		Logger:   logger,
		Engine:   engine.New(c.EngineOptions(logger, timer.NewSteadyClock())...),
		Registry: r,
	}

	if c.Store.Path != "" {
		st, err := store.Open(c.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		rt.Store = st
	}

	if err := rt.loadGraph(ctx); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) loadGraph(ctx context.Context) error {
	c := rt.Config
	if c.Store.Snapshot != "" && rt.Store != nil {
		info, err := rt.Store.Restore(ctx, rt.Engine, c.Store.Snapshot, rt.Registry)
		switch {
		case err == nil:
			rt.Restored = &info
			rt.Logger.Info("graph restored", "snapshot", info.Name, "id", info.ID, "nodes", info.NodeCount)
			return nil
		case errors.Is(err, sql.ErrNoRows):
			rt.Logger.Debug("no archived snapshot", "snapshot", c.Store.Snapshot)
		default:
			return err
		}
	}

	if c.Graph.Dir == "" {
		return nil
	}
	g, err := compiler.LoadDir(c.Graph.Dir)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	if err := compiler.Build(rt.Engine, g, rt.Registry); err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	rt.Logger.Info("graph built", "dir", c.Graph.Dir, "nodes", len(g.Nodes), "links", len(g.Links))
	return nil
}

// Checkpoint archives the engine under the configured snapshot name.
func (rt *Runtime) Checkpoint(ctx context.Context) (store.SnapshotInfo, error) {
	if rt.Store == nil || rt.Config.Store.Snapshot == "" {
		return store.SnapshotInfo{}, fmt.Errorf("checkpoint: no store snapshot configured")
	}
	return rt.Store.Checkpoint(ctx, rt.Engine, rt.Config.Store.Snapshot)
}

// Close releases the store.
func (rt *Runtime) Close() error {
	return rt.Store.Close()
}
