package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ResolvesPaths(t *testing.T) {
	cfg, err := Load("testdata/app.yaml")
	require.NoError(t, err)

	off := false
	want := &Config{
		Version: 1,
		Log:     LogConfig{Level: "debug", Format: "json"},
		Engine:  EngineConfig{DirtyTracking: &off, UpdateReport: true},
		Graph:   GraphConfig{Dir: filepath.Join("..", "compiler", "testdata", "chain")},
		Store:   StoreConfig{Path: filepath.Join("testdata", "state.db"), Snapshot: "main"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, cfg.DirtyTrackingEnabled())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("version: 1\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.DirtyTrackingEnabled())
	assert.False(t, cfg.Engine.UpdateReport)
}

func TestParse_MemoryStoreNotResolved(t *testing.T) {
	cfg, err := Parse([]byte("version: 1\nstore:\n  path: \":memory:\"\n"))
	require.NoError(t, err)
	cfg.resolvePaths("/etc/app")
	assert.Equal(t, ":memory:", cfg.Store.Path)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing version", "log:\n  level: info\n", "unsupported config version: 0"},
		{"future version", "version: 2\n", "unsupported config version: 2"},
		{"unknown field", "version: 1\nengin:\n  update_report: true\n", "field engin not found"},
		{"bad level", "version: 1\nlog:\n  level: loud\n", `unknown level "loud"`},
		{"bad format", "version: 1\nlog:\n  format: xml\n", `unknown format "xml"`},
		{"snapshot without store", "version: 1\nstore:\n  snapshot: main\n", "store.snapshot requires store.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
