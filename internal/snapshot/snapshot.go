package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind tags written for each node.
const (
	KindScript    = "script"
	KindAnimation = "animation"
	KindTimer     = "timer"
	KindBinding   = "binding"
)

// ErrCorrupt is returned when snapshot bytes cannot be decoded into a
// well-formed snapshot.
var ErrCorrupt = errors.New("corrupt snapshot")

// Snapshot is the persisted form of a whole graph.
type Snapshot struct {
	FormatVersion string      `json:"format_version"`
	EngineVersion string      `json:"engine_version"`
	NextID        int64       `json:"next_id"`
	DataArrays    []DataArray `json:"data_arrays,omitempty"`
	Nodes         []Node      `json:"nodes,omitempty"`
	Links         []Link      `json:"links,omitempty"`
}

// DataArray is one persisted data array. Channels refer to it by index.
type DataArray struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Values []Value `json:"values"`
}

// Node is one persisted logic node.
type Node struct {
	ID   int64  `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`

	// Ref names the script or sink implementation for the resolver.
	Ref string `json:"ref,omitempty"`

	Inputs   Property  `json:"inputs"`
	Outputs  *Property `json:"outputs,omitempty"`
	Channels []Channel `json:"channels,omitempty"`
}

// Channel is one persisted animation channel. Array fields are indexes
// into Snapshot.DataArrays; -1 means absent.
type Channel struct {
	Name          string `json:"name"`
	Timestamps    int    `json:"timestamps"`
	Keyframes     int    `json:"keyframes"`
	Interpolation string `json:"interpolation"`
	TangentsIn    int    `json:"tangents_in"`
	TangentsOut   int    `json:"tangents_out"`
}

// Property is one persisted property tree node. Value is set for
// primitives only.
type Property struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Value    *Value     `json:"value,omitempty"`
	Children []Property `json:"children,omitempty"`
}

// Endpoint locates a primitive property by owning node id and child-index
// path.
type Endpoint struct {
	Node int64 `json:"node"`
	Path []int `json:"path"`
}

// Link is one persisted link. Source paths are resolved against outputs,
// target paths against inputs.
type Link struct {
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
}

// New returns an empty snapshot stamped with the current versions.
func New() *Snapshot {
	return &Snapshot{FormatVersion: FormatVersion, EngineVersion: EngineVersion}
}

// Encode renders s as canonical JSON.
func Encode(s *Snapshot) ([]byte, error) {
	out, err := Canonical(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return out, nil
}

// Decode parses snapshot bytes. Unknown fields are rejected, and so are
// snapshots whose major versions differ from FormatVersion or
// EngineVersion.
func Decode(data []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after snapshot", ErrCorrupt)
	}
	if err := CheckVersion("format", s.FormatVersion, FormatVersion); err != nil {
		return nil, err
	}
	if err := CheckVersion("engine", s.EngineVersion, EngineVersion); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &s, nil
}

// validate checks references inside the snapshot: unique node ids below
// NextID and in-range data array indexes.
func (s *Snapshot) validate() error {
	seen := make(map[int64]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID <= 0 || n.ID >= s.NextID {
			return fmt.Errorf("node %q has id %d outside [1, %d)", n.Name, n.ID, s.NextID)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = true
		for _, ch := range n.Channels {
			for _, idx := range []int{ch.Timestamps, ch.Keyframes} {
				if idx < 0 || idx >= len(s.DataArrays) {
					return fmt.Errorf("channel %q of node %q refers to data array %d", ch.Name, n.Name, idx)
				}
			}
			for _, idx := range []int{ch.TangentsIn, ch.TangentsOut} {
				if idx < -1 || idx >= len(s.DataArrays) {
					return fmt.Errorf("channel %q of node %q refers to data array %d", ch.Name, n.Name, idx)
				}
			}
		}
	}
	for i, l := range s.Links {
		if !seen[l.Source.Node] || !seen[l.Target.Node] {
			return fmt.Errorf("link %d refers to an unknown node", i)
		}
	}
	return nil
}
