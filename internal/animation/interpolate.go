package animation

import (
	"math"
	"sort"

	"github.com/roach88/logicgraph/internal/property"
)

// Sample evaluates the channel at time t. Times at or before the first
// timestamp yield the first keyframe; times at or after the last timestamp
// yield the last keyframe.
func (c Channel) Sample(t float32) property.Value {
	ts := c.Timestamps
	n := ts.Len()

	// first timestamp strictly greater than t
	upper := sort.Search(n, func(i int) bool { return ts.float(i) > t })
	lower := upper - 1
	if lower < 0 {
		lower = 0
	}
	if upper == n {
		upper = n - 1
	}

	var ratio float32
	between := ts.float(upper) - ts.float(lower)
	if upper != lower {
		ratio = (t - ts.float(lower)) / between
	}
	ratio = clamp01(ratio)

	var v property.Value
	switch {
	case c.Interpolation == Step:
		v = c.Keyframes.At(lower)
	case c.Interpolation.IsCubic():
		v = cubic(c.Keyframes.At(lower), c.Keyframes.At(upper),
			c.TangentsOut.At(lower), c.TangentsIn.At(upper), ratio, between)
	default:
		if fn := c.Interpolation.easing(); fn != nil {
			ratio = clamp01(fn(ratio, 0, 1, 1))
		}
		v = linear(c.Keyframes.At(lower), c.Keyframes.At(upper), ratio)
	}

	if c.Interpolation.IsQuaternion() {
		v = normalizeQuaternion(v.(property.Vec4f))
	}
	return v
}

func clamp01(r float32) float32 {
	return max(0, min(1, r))
}

// linear blends per component. Integer components add the rounded delta to
// the lower key.
func linear(lo, hi property.Value, r float32) property.Value {
	t := lo.Type()
	l, h := property.Components(lo), property.Components(hi)
	out := make([]float64, len(l))
	for i := range l {
		if t.IsFloatBased() {
			a, b := float32(l[i]), float32(h[i])
			out[i] = float64(a + float32(r*(b-a)))
		} else {
			out[i] = l[i] + math.Round(float64(r*float32(h[i]-l[i])))
		}
	}
	v, _ := property.FromComponents(t, out)
	return v
}

// cubic is the Hermite spline from glTF 2.0 Appendix C. Tangents are
// scaled by the time between the two keys.
func cubic(lo, hi, outTangent, inTangent property.Value, r, between float32) property.Value {
	t := lo.Type()
	p0, p1 := property.Components(lo), property.Components(hi)
	m0, m1 := property.Components(outTangent), property.Components(inTangent)

	t2 := r * r
	t3 := t2 * r
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + r
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	out := make([]float64, len(p0))
	for i := range p0 {
		val := h00*float32(p0[i]) +
			h10*(between*float32(m0[i])) +
			h01*float32(p1[i]) +
			h11*(between*float32(m1[i]))
		if t.IsFloatBased() {
			out[i] = float64(val)
		} else {
			out[i] = math.Round(float64(val))
		}
	}
	v, _ := property.FromComponents(t, out)
	return v
}

func normalizeQuaternion(q property.Vec4f) property.Vec4f {
	norm := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	if norm == 0 {
		return q
	}
	f := 1 / norm
	return property.Vec4f{q[0] * f, q[1] * f, q[2] * f, q[3] * f}
}
