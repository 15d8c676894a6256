package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines an engine test scenario: a declared graph, a sequence
// of steps against it and assertions over the resulting update trace.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph is the directory of CUE graph declarations.
	// Relative paths resolve against the scenario file location.
	Graph string `yaml:"graph"`

	// TimerClockStepUS is the microsecond step of the deterministic
	// timer clock. Default: 1000.
	TimerClockStepUS int64 `yaml:"timer_clock_step_us,omitempty"`

	// DirtyTracking disables dirty tracking when set to false.
	DirtyTracking *bool `yaml:"dirty_tracking,omitempty"`

	// Steps run in order. Each step holds exactly one action.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace.
	// Supported types: executed_order, execution_count, skipped, push_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	Set        *SetStep        `yaml:"set,omitempty"`
	Link       *LinkStep       `yaml:"link,omitempty"`
	Unlink     *UnlinkStep     `yaml:"unlink,omitempty"`
	Update     *UpdateStep     `yaml:"update,omitempty"`
	Expect     *ExpectStep     `yaml:"expect,omitempty"`
	Checkpoint *CheckpointStep `yaml:"checkpoint,omitempty"`
	Restore    *CheckpointStep `yaml:"restore,omitempty"`
}

// SetStep assigns an input value.
type SetStep struct {
	Node        string `yaml:"node"`
	Property    string `yaml:"property"`
	Value       any    `yaml:"value"`
	ExpectError string `yaml:"expect_error,omitempty"`
}

// LinkStep links "node.path" endpoints.
type LinkStep struct {
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	ExpectError string `yaml:"expect_error,omitempty"`
}

// UnlinkStep removes the link into "node.path".
type UnlinkStep struct {
	To          string `yaml:"to"`
	ExpectError string `yaml:"expect_error,omitempty"`
}

// UpdateStep runs Count updates (default 1).
type UpdateStep struct {
	Count int `yaml:"count,omitempty"`

	// ExpectError is the engine error code every update must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ExpectStep checks a property value. Outputs are checked unless Input
// is set.
type ExpectStep struct {
	Node      string  `yaml:"node"`
	Property  string  `yaml:"property"`
	Input     bool    `yaml:"input,omitempty"`
	Value     any     `yaml:"value"`
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// CheckpointStep names a snapshot in the scenario store.
type CheckpointStep struct {
	Name string `yaml:"name"`
}

// Assertion validates the update trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "executed_order": Nodes were executed in this relative order in Frame
	// - "execution_count": Node was executed exactly Count times
	// - "skipped": Node was skipped in Frame
	// - "push_count": binding Node pushed exactly Count batches
	Type string `yaml:"type"`

	Node  string   `yaml:"node,omitempty"`
	Nodes []string `yaml:"nodes,omitempty"`
	Frame uint64   `yaml:"frame,omitempty"`
	Count int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertExecutedOrder  = "executed_order"
	AssertExecutionCount = "execution_count"
	AssertSkipped        = "skipped"
	AssertPushCount      = "push_count"
)

// LoadScenario reads and parses a scenario YAML file. The graph path
// resolves against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the graph path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := parseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Graph != "" && !filepath.IsAbs(scenario.Graph) && basePath != "" {
		scenario.Graph = filepath.Join(basePath, scenario.Graph)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario, err := parseScenario(data)
	if err != nil {
		return nil, err
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func parseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and step shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Graph == "" {
		return fmt.Errorf("graph is required")
	}
	if s.TimerClockStepUS < 0 {
		return fmt.Errorf("timer_clock_step_us must be non-negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	for _, present := range []bool{
		step.Set != nil, step.Link != nil, step.Unlink != nil, step.Update != nil,
		step.Expect != nil, step.Checkpoint != nil, step.Restore != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one action is required, got %d", index, set)
	}

	switch {
	case step.Set != nil:
		if step.Set.Node == "" || step.Set.Property == "" || step.Set.Value == nil {
			return fmt.Errorf("steps[%d]: set needs node, property and value", index)
		}
	case step.Link != nil:
		if step.Link.From == "" || step.Link.To == "" {
			return fmt.Errorf("steps[%d]: link needs from and to", index)
		}
	case step.Unlink != nil:
		if step.Unlink.To == "" {
			return fmt.Errorf("steps[%d]: unlink needs to", index)
		}
	case step.Update != nil:
		if step.Update.Count < 0 {
			return fmt.Errorf("steps[%d]: update count must be non-negative", index)
		}
	case step.Expect != nil:
		if step.Expect.Node == "" || step.Expect.Property == "" || step.Expect.Value == nil {
			return fmt.Errorf("steps[%d]: expect needs node, property and value", index)
		}
		if step.Expect.Tolerance < 0 {
			return fmt.Errorf("steps[%d]: tolerance must be non-negative", index)
		}
	case step.Checkpoint != nil:
		if step.Checkpoint.Name == "" {
			return fmt.Errorf("steps[%d]: checkpoint needs a name", index)
		}
	case step.Restore != nil:
		if step.Restore.Name == "" {
			return fmt.Errorf("steps[%d]: restore needs a name", index)
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertExecutedOrder:
		if len(a.Nodes) < 2 {
			return fmt.Errorf("assertions[%d]: executed_order needs at least two nodes", index)
		}
		if a.Frame == 0 {
			return fmt.Errorf("assertions[%d]: frame is required for executed_order", index)
		}
	case AssertExecutionCount, AssertPushCount:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertSkipped:
		if a.Node == "" || a.Frame == 0 {
			return fmt.Errorf("assertions[%d]: node and frame are required for skipped", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
