package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicgraph/internal/property"
	"github.com/roach88/logicgraph/internal/testutil"
)

type timerFixture struct {
	t    *testing.T
	node *Node
	in   *property.Property
	out  *property.Property
}

func newTimerFixture(t *testing.T, clock Clock) *timerFixture {
	t.Helper()
	in, err := property.Build(InputDecl(), property.ScriptInput, 1)
	require.NoError(t, err)
	out, err := property.Build(OutputDecl(), property.ScriptOutput, 1)
	require.NoError(t, err)
	return &timerFixture{t: t, node: NewNode(clock), in: in, out: out}
}

func (f *timerFixture) tick(ticker int64) error {
	f.t.Helper()
	p, _ := f.in.ChildByName(InputTicker)
	_, err := p.Assign(property.Int64(ticker))
	require.NoError(f.t, err)
	return f.node.Evaluate("timer", f.in, f.out)
}

func (f *timerFixture) delta() float32 {
	p, _ := f.out.ChildByName(OutputTimeDelta)
	v, _ := property.Get[property.Float](p)
	return float32(v)
}

func (f *timerFixture) ticker() int64 {
	p, _ := f.out.Child(1)
	v, _ := property.Get[property.Int64](p)
	return int64(v)
}

func TestTimer_AutoThenManual(t *testing.T) {
	clock := testutil.NewDeterministicClock(16000)
	f := newTimerFixture(t, clock)

	require.NoError(t, f.tick(0))
	assert.Equal(t, float32(0), f.delta(), "first auto evaluation is a baseline")
	assert.Equal(t, int64(16000), f.ticker())

	require.NoError(t, f.tick(0))
	assert.InDelta(t, 0.016, f.delta(), 1e-7)
	assert.Equal(t, int64(32000), f.ticker())

	require.NoError(t, f.tick(500000))
	assert.Equal(t, float32(0), f.delta(), "switching to manual re-baselines")
	assert.Equal(t, int64(500000), f.ticker())

	require.NoError(t, f.tick(1500000))
	assert.Equal(t, float32(1.0), f.delta())
	assert.Equal(t, int64(1500000), f.ticker())
}

func TestTimer_ManualFromStart(t *testing.T) {
	f := newTimerFixture(t, testutil.NewDeterministicClock(1))
	require.NoError(t, f.tick(100))
	assert.Equal(t, float32(0), f.delta())

	require.NoError(t, f.tick(100))
	assert.Equal(t, float32(0), f.delta(), "equal ticker gives zero delta")

	require.NoError(t, f.tick(350))
	assert.InDelta(t, 0.00025, f.delta(), 1e-9)
}

func TestTimer_NonMonotonicTicker(t *testing.T) {
	f := newTimerFixture(t, testutil.NewDeterministicClock(1))
	require.NoError(t, f.tick(2000))
	err := f.tick(1000)
	require.Error(t, err)
	assert.Equal(t, "TimerNode 'timer' failed to update - ticker must be monotonically increasing (lastTick=2000 newTick=1000)", err.Error())
}

func TestTimer_NegativeTicker(t *testing.T) {
	f := newTimerFixture(t, testutil.NewDeterministicClock(1))
	err := f.tick(-5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative ticker")
}

func TestTimer_BackToAutoRebaselines(t *testing.T) {
	clock := testutil.NewDeterministicClock(10)
	f := newTimerFixture(t, clock)
	require.NoError(t, f.tick(5000000))
	require.NoError(t, f.tick(6000000))
	assert.Equal(t, float32(1), f.delta())

	// the steady clock is far behind the manual ticker; switching back must
	// not report a negative delta
	require.NoError(t, f.tick(0))
	assert.Equal(t, float32(0), f.delta())
	require.NoError(t, f.tick(0))
	assert.InDelta(t, 0.00001, f.delta(), 1e-9)
}

func TestSteadyClock_Monotonic(t *testing.T) {
	c := NewSteadyClock()
	a := c.NowMicros()
	b := c.NowMicros()
	assert.Positive(t, a)
	assert.GreaterOrEqual(t, b, a)
}

func TestNewNode_DefaultsToSteadyClock(t *testing.T) {
	n := NewNode(nil)
	_, ok := n.clock.(*SteadyClock)
	assert.True(t, ok)
}
