package engine

import (
	"errors"
	"fmt"
)

// Error is a structured engine error. Every failing engine call returns
// one and also records it in the list returned by Engine.Errors.
//
// Error kinds:
//   - Construction: invalid node or data array configuration
//   - Link: rejected link or unlink, no graph mutation happened
//   - Cycle: the link graph is not loop-free, nothing was executed
//   - Runtime: a node's evaluation failed, the update stopped there
//   - Persistence: save or load failed, the live graph is unchanged
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID identifies the offending node, zero when none.
	NodeID NodeID

	// NodeName is the offending node's name at the time of the error.
	NodeName string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeConstruction indicates an invalid node or data array.
	ErrCodeConstruction ErrorCode = "CONSTRUCTION_ERROR"

	// ErrCodeLink indicates a rejected link or unlink.
	ErrCodeLink ErrorCode = "LINK_ERROR"

	// ErrCodeGraphHasCycle indicates the link graph contains a cycle.
	ErrCodeGraphHasCycle ErrorCode = "GRAPH_HAS_CYCLE"

	// ErrCodeRuntime indicates a node evaluation failed.
	ErrCodeRuntime ErrorCode = "RUNTIME_ERROR"

	// ErrCodePersistence indicates save or load failed.
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"

	// ErrCodeLookup indicates an object that does not belong to this engine.
	ErrCodeLookup ErrorCode = "LOOKUP_ERROR"

	// ErrCodeInUse indicates an object that is still referenced.
	ErrCodeInUse ErrorCode = "IN_USE"

	// ErrCodeAssignment indicates a rejected property value write.
	ErrCodeAssignment ErrorCode = "ASSIGNMENT_ERROR"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.NodeName != "" {
		return fmt.Sprintf("%s: %s (node=%s, id=%d)", e.Code, e.Message, e.NodeName, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConstructionError reports whether err is a construction error.
func IsConstructionError(err error) bool { return hasCode(err, ErrCodeConstruction) }

// IsLinkError reports whether err is a link error.
func IsLinkError(err error) bool { return hasCode(err, ErrCodeLink) }

// IsCycleError reports whether err is a cycle error.
func IsCycleError(err error) bool { return hasCode(err, ErrCodeGraphHasCycle) }

// IsRuntimeError reports whether err is a node evaluation error.
func IsRuntimeError(err error) bool { return hasCode(err, ErrCodeRuntime) }

// IsPersistenceError reports whether err is a save or load error.
func IsPersistenceError(err error) bool { return hasCode(err, ErrCodePersistence) }

// IsLookupError reports whether err is a lookup error.
func IsLookupError(err error) bool { return hasCode(err, ErrCodeLookup) }

// IsInUseError reports whether err refused to destroy a referenced object.
func IsInUseError(err error) bool { return hasCode(err, ErrCodeInUse) }

// IsAssignmentError reports whether err is a rejected property write.
func IsAssignmentError(err error) bool { return hasCode(err, ErrCodeAssignment) }

func newError(code ErrorCode, n *LogicNode, err error) *Error {
	e := &Error{Code: code, Message: err.Error(), Err: err}
	if n != nil {
		e.NodeID = n.id
		e.NodeName = n.name
	}
	return e
}

func newErrorf(code ErrorCode, n *LogicNode, format string, args ...any) *Error {
	return newError(code, n, fmt.Errorf(format, args...))
}
