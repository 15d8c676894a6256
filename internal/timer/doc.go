// Package timer implements the ticker/time-delta logic node kind.
//
// A timer node has one input, ticker_us (int64), and two outputs,
// timeDelta (float seconds) and ticker_us (the resolved ticker).
//
// ticker_us == 0 selects auto mode: the node reads its Clock on every
// evaluation. Any positive ticker selects manual mode and the caller's
// value is used instead. The first evaluation after creation, and the
// first after switching from auto to manual, only establishes a baseline
// and reports a delta of 0.
//
// Timer nodes are evaluated on every update regardless of dirty state.
package timer
