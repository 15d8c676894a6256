package property

// Semantics describes what kind of node a property belongs to and which
// side of it. It decides the property's role and its dirty-marking rules.
type Semantics int

const (
	ScriptInput Semantics = iota
	ScriptOutput
	BindingInput
	AnimationInput
	AnimationOutput
)

// Role is the direction of a property: Input properties can be link
// targets, Output properties can be link sources.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
)

func (r Role) String() string {
	if r == RoleOutput {
		return "output"
	}
	return "input"
}

// Role derives the direction from the semantics.
func (s Semantics) Role() Role {
	switch s {
	case ScriptOutput, AnimationOutput:
		return RoleOutput
	default:
		return RoleInput
	}
}

// AlwaysDirties reports whether writes to a property with these semantics
// mark the owning node dirty even when the value is unchanged.
// Binding inputs must re-push to sinks that may never have been
// initialized; animation inputs must re-sample on every activation.
func (s Semantics) AlwaysDirties() bool {
	return s == BindingInput || s == AnimationInput
}

func (s Semantics) String() string {
	switch s {
	case ScriptInput:
		return "ScriptInput"
	case ScriptOutput:
		return "ScriptOutput"
	case BindingInput:
		return "BindingInput"
	case AnimationInput:
		return "AnimationInput"
	case AnimationOutput:
		return "AnimationOutput"
	default:
		return "Unknown"
	}
}
