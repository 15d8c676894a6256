package engine

import "time"

// UpdateReport describes one update: which nodes ran and how long each
// section took. It is collected only when reporting is enabled.
type UpdateReport struct {
	Frame uint64 `json:"frame"`

	// Executed lists evaluated nodes in execution order.
	Executed []NodeTiming `json:"executed,omitempty"`

	// Skipped lists nodes that were not dirty.
	Skipped []NodeRef `json:"skipped,omitempty"`

	// LinkActivations counts source values copied into linked inputs.
	LinkActivations int `json:"link_activations"`

	TopologySort time.Duration `json:"topology_sort_ns"`
	Total        time.Duration `json:"total_ns"`

	// Failed is set when the update stopped at a node error.
	Failed *NodeRef `json:"failed,omitempty"`
}

// NodeRef identifies a node in a report.
type NodeRef struct {
	ID   NodeID `json:"id"`
	Name string `json:"name"`
}

// NodeTiming is one evaluated node and its evaluation time.
type NodeTiming struct {
	NodeRef
	Duration time.Duration `json:"duration_ns"`
}

// ExecutedNames returns the names of executed nodes in order.
func (r *UpdateReport) ExecutedNames() []string {
	out := make([]string, len(r.Executed))
	for i, t := range r.Executed {
		out[i] = t.Name
	}
	return out
}

// SkippedNames returns the names of skipped nodes in order.
func (r *UpdateReport) SkippedNames() []string {
	out := make([]string, len(r.Skipped))
	for i, s := range r.Skipped {
		out[i] = s.Name
	}
	return out
}

// LastReport returns the report of the most recent update, or nil when
// reporting is disabled or no update ran yet.
func (e *Engine) LastReport() *UpdateReport {
	return e.report
}
