// Package animation implements keyframe animation as a logic node kind.
//
// An animation node samples one or more channels. Each channel pairs a
// float timestamp DataArray with a keyframe DataArray of the same length
// and an interpolation kind. DataArrays are immutable and shared by
// reference; a reference count keeps them alive while channels use them.
//
// Inputs:
//
//	timeDelta    float  amount of time to advance (must not be negative)
//	play         bool   advance only while true
//	loop         bool   wrap around at the end of the time range
//	rewindOnStop bool   jump back to the range begin while stopped
//	timeRange    vec2f  (begin, end); end <= 0 means "animation duration"
//
// Outputs: progress (float in [0,1]) followed by one output per channel,
// named after the channel and typed like its keyframes.
//
// The elapsed play time is kept as an offset from the time range begin, so
// changing the range while playing keeps the offset.
package animation
