package harness

// TraceEvent records one engine update.
type TraceEvent struct {
	Frame    uint64   `json:"frame"`
	Executed []string `json:"executed"`
	Skipped  []string `json:"skipped"`

	// Pushed lists binding values handed to sinks as "node.path=value".
	Pushed []string `json:"pushed,omitempty"`

	// Outputs maps "node.path" to the formatted value of every output
	// primitive after the update.
	Outputs map[string]string `json:"outputs"`

	// Error is the engine error code when the update failed.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect steps and assertions match.
	Pass bool `json:"pass"`

	// Trace contains one event per update in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID identifies the update journal written during the run.
	RunID string `json:"run_id,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddUpdateTrace appends an update event.
func (r *Result) AddUpdateTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
