package animation

import (
	"fmt"
	"strings"

	"github.com/tanema/gween/ease"

	"github.com/roach88/logicgraph/internal/property"
)

// Interpolation selects how a channel blends between keyframes.
type Interpolation int

const (
	Step Interpolation = iota
	Linear
	Cubic
	LinearQuaternion
	CubicQuaternion
	EaseIn
	EaseOut
	EaseInOut
	EaseInOutSine
)

var interpolationNames = [...]string{
	Step:             "step",
	Linear:           "linear",
	Cubic:            "cubic",
	LinearQuaternion: "linear_quaternion",
	CubicQuaternion:  "cubic_quaternion",
	EaseIn:           "ease_in",
	EaseOut:          "ease_out",
	EaseInOut:        "ease_in_out",
	EaseInOutSine:    "ease_in_out_sine",
}

func (i Interpolation) String() string {
	if i < 0 || int(i) >= len(interpolationNames) {
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
	return interpolationNames[i]
}

// ParseInterpolation resolves an interpolation name (case-insensitive).
func ParseInterpolation(name string) (Interpolation, error) {
	for i, n := range interpolationNames {
		if strings.EqualFold(n, name) {
			return Interpolation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown interpolation %q", name)
}

// IsCubic reports whether the kind needs tangents.
func (i Interpolation) IsCubic() bool { return i == Cubic || i == CubicQuaternion }

// IsQuaternion reports whether results are normalized vec4f rotations.
func (i Interpolation) IsQuaternion() bool { return i == LinearQuaternion || i == CubicQuaternion }

// easing returns the gween curve for eased kinds, nil otherwise.
func (i Interpolation) easing() ease.TweenFunc {
	switch i {
	case EaseIn:
		return ease.InQuad
	case EaseOut:
		return ease.OutQuad
	case EaseInOut:
		return ease.InOutCubic
	case EaseInOutSine:
		return ease.InOutSine
	}
	return nil
}

// Channel is one animated output stream.
type Channel struct {
	Name          string
	Timestamps    *DataArray
	Keyframes     *DataArray
	Interpolation Interpolation
	TangentsIn    *DataArray
	TangentsOut   *DataArray
}

// Arrays returns the non-nil arrays the channel references.
func (c Channel) Arrays() []*DataArray {
	var out []*DataArray
	for _, a := range []*DataArray{c.Timestamps, c.Keyframes, c.TangentsIn, c.TangentsOut} {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Duration is the channel's last timestamp.
func (c Channel) Duration() float32 {
	return c.Timestamps.float(c.Timestamps.Len() - 1)
}

// ValidateChannels checks channel configuration for an animation node
// called nodeName. It does not check DataArray ownership.
func ValidateChannels(nodeName string, channels []Channel) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("failed to create AnimationNode '%s': %s", nodeName, fmt.Sprintf(format, args...))
	}
	if len(channels) == 0 {
		return fail("must provide at least one channel")
	}
	names := make(map[string]bool, len(channels))
	for _, ch := range channels {
		if ch.Name == OutputProgress {
			return fail("channel name '%s' is reserved", ch.Name)
		}
		if names[ch.Name] {
			return fail("duplicate channel name '%s'", ch.Name)
		}
		names[ch.Name] = true

		if ch.Timestamps == nil || ch.Keyframes == nil {
			return fail("every channel must provide timestamps and keyframes data")
		}
		if ch.Timestamps.Type() != property.TypeFloat {
			return fail("all channel timestamps must be float type")
		}
		if ch.Timestamps.Len() != ch.Keyframes.Len() {
			return fail("number of keyframes must be same as number of timestamps")
		}
		for i := 1; i < ch.Timestamps.Len(); i++ {
			if ch.Timestamps.float(i) <= ch.Timestamps.float(i-1) {
				return fail("timestamps have to be strictly in ascending order")
			}
		}
		if ch.Interpolation < 0 || int(ch.Interpolation) >= len(interpolationNames) {
			return fail("invalid interpolation type %d", int(ch.Interpolation))
		}
		if ch.Interpolation.IsQuaternion() && ch.Keyframes.Type() != property.TypeVec4f {
			return fail("quaternion animation requires the channel keyframes to be of type vec4f")
		}
		if ch.Interpolation.IsCubic() {
			if ch.TangentsIn == nil || ch.TangentsOut == nil {
				return fail("cubic interpolation requires tangents to be provided")
			}
			if ch.TangentsIn.Type() != ch.Keyframes.Type() || ch.TangentsOut.Type() != ch.Keyframes.Type() {
				return fail("tangents must be of same data type as keyframes")
			}
			if ch.TangentsIn.Len() != ch.Keyframes.Len() || ch.TangentsOut.Len() != ch.Keyframes.Len() {
				return fail("number of tangents in/out must be same as number of keyframes")
			}
		} else if ch.TangentsIn != nil || ch.TangentsOut != nil {
			return fail("tangents were provided for other than cubic interpolation type")
		}
	}
	return nil
}
