package mbsim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimer is a scheduled callback that only runs when the test fires it
type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) schedule(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// last returns the most recently scheduled timer
func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fire runs the latest timer's callback, as an expired time.AfterFunc would
func (c *fakeClock) fire(t *testing.T) {
	t.Helper()
	timer := c.last()
	require.NotNil(t, timer)
	timer.fn()
}

const playbackScenario = `# simulation server configuration file
#VALUE LOG
Ref,Delay,Level,Running
REF,DELAY,H0U,C0B
one,100,10,1
two,200,,0
three,300,30,
`

type playbackFixture struct {
	mem    *Memory
	clock  *fakeClock
	pb     *Playback
	rows   []int
	states []State
}

func newPlaybackFixture(t *testing.T, loops int) *playbackFixture {
	t.Helper()
	cfg, err := ParseString(playbackScenario)
	require.NoError(t, err)
	require.Empty(t, cfg.Validate())

	f := &playbackFixture{clock: &fakeClock{}}
	f.mem = NewMemory(LayoutFor(cfg.Model))
	regs, err := NewRegisterMap(f.mem, DefaultSwapMode)
	require.NoError(t, err)
	f.pb, err = NewPlayback(regs, cfg.Model, loops, WithScheduler(f.clock.schedule))
	require.NoError(t, err)
	f.pb.OnRowChanged(func(row int) { f.rows = append(f.rows, row) })
	f.pb.OnStateChanged(func(s State) { f.states = append(f.states, s) })
	return f
}

func (f *playbackFixture) level() uint16 {
	return f.mem.Holdings()[0]
}

func (f *playbackFixture) running() bool {
	return f.mem.Coils()[0]&1 != 0
}

func TestPlaybackLoops(t *testing.T) {
	f := newPlaybackFixture(t, 2)
	assert.Equal(t, Stopped, f.pb.State())

	f.pb.Start()
	assert.Equal(t, Playing, f.pb.State())
	assert.Equal(t, 100*time.Millisecond, f.clock.last().delay)

	for len(f.rows) < 6 {
		f.clock.fire(t)
	}
	assert.Equal(t, Playing, f.pb.State())

	// the tick after the sixth row completes the playback and schedules nothing
	last := f.clock.last()
	scheduled := f.clock.count()
	last.fn()
	assert.Equal(t, scheduled, f.clock.count())
	assert.Equal(t, Stopped, f.pb.State())

	last.fn()
	assert.Equal(t, scheduled, f.clock.count())

	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, f.rows)
	assert.Equal(t, []State{Playing, Stopped}, f.states)
	assert.Equal(t, Status{State: Stopped, Row: 2, Loop: 2}, f.pb.Status())
	// the last row stays applied
	assert.Equal(t, uint16(30), f.level())
	assert.False(t, f.running())
}

func TestPlaybackDelays(t *testing.T) {
	f := newPlaybackFixture(t, 1)
	f.pb.Start()
	delays := []time.Duration{f.clock.last().delay}
	f.clock.fire(t)
	delays = append(delays, f.clock.last().delay)
	f.clock.fire(t)
	delays = append(delays, f.clock.last().delay)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}, delays)
}

func TestPlaybackCarriesValuesForward(t *testing.T) {
	f := newPlaybackFixture(t, 1)
	f.pb.Start()
	assert.Equal(t, uint16(10), f.level())
	assert.True(t, f.running())

	f.clock.fire(t)
	assert.Equal(t, 1, f.pb.Row())
	assert.Equal(t, uint16(10), f.level(), "absent value keeps the previous one")
	assert.False(t, f.running())

	f.clock.fire(t)
	assert.Equal(t, uint16(30), f.level())
	assert.False(t, f.running())
}

func TestPlaybackInfinite(t *testing.T) {
	f := newPlaybackFixture(t, 0)
	f.pb.Start()
	for i := 0; i < 10; i++ {
		f.clock.fire(t)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1}, f.rows)
	assert.Equal(t, Status{State: Playing, Row: 1, Loop: 3}, f.pb.Status())
}

func TestPlaybackPauseResume(t *testing.T) {
	f := newPlaybackFixture(t, 1)
	f.pb.Start()
	f.clock.fire(t)
	pending := f.clock.last()

	f.pb.Pause()
	assert.Equal(t, Paused, f.pb.State())
	assert.True(t, pending.stopped)

	// a callback that was already in flight does nothing
	pending.fn()
	assert.Equal(t, []int{0, 1}, f.rows)
	assert.Equal(t, 1, f.pb.Row())

	f.pb.Pause()
	f.pb.Start()
	assert.Equal(t, Paused, f.pb.State())

	scheduled := f.clock.count()
	f.pb.Resume()
	assert.Equal(t, Playing, f.pb.State())
	assert.Equal(t, scheduled+1, f.clock.count())
	assert.Equal(t, 200*time.Millisecond, f.clock.last().delay, "resume waits the full row delay")
	assert.Equal(t, []int{0, 1}, f.rows, "resume does not reapply the row")

	f.clock.fire(t)
	assert.Equal(t, []int{0, 1, 2}, f.rows)
	assert.Equal(t, []State{Playing, Paused, Playing}, f.states)
}

func TestPlaybackStop(t *testing.T) {
	f := newPlaybackFixture(t, 1)
	f.pb.Stop()
	assert.Empty(t, f.states)

	f.pb.Start()
	f.clock.fire(t)
	pending := f.clock.last()
	f.pb.Stop()
	assert.True(t, pending.stopped)
	assert.Equal(t, Status{State: Stopped, Row: 0, Loop: 0}, f.pb.Status())
	// registers keep what was last applied
	assert.Equal(t, uint16(10), f.level())
	assert.False(t, f.running())

	pending.fn()
	assert.Equal(t, []int{0, 1}, f.rows)

	f.pb.Resume()
	assert.Equal(t, Stopped, f.pb.State())

	f.pb.Start()
	assert.Equal(t, []int{0, 1, 0}, f.rows)
	assert.True(t, f.running())
	require.NoError(t, f.pb.Close())
	assert.Equal(t, []State{Playing, Stopped, Playing, Stopped}, f.states)
}

func TestPlaybackStartIsIdempotent(t *testing.T) {
	f := newPlaybackFixture(t, 1)
	f.pb.Start()
	f.pb.Start()
	assert.Equal(t, []int{0}, f.rows)
	assert.Equal(t, 1, f.clock.count())
}

func TestNewPlaybackErrors(t *testing.T) {
	mem := NewMemory(Layout{Holdings: 1})
	regs, err := NewRegisterMap(mem, DefaultSwapMode)
	require.NoError(t, err)
	cfg, err := ParseString(playbackScenario)
	require.NoError(t, err)

	_, err = NewPlayback(nil, cfg.Model, 1)
	assert.Error(t, err)
	_, err = NewPlayback(regs, nil, 1)
	assert.Error(t, err)
	_, err = NewPlayback(regs, NewModel(), 1)
	assert.Error(t, err)
	_, err = NewPlayback(regs, cfg.Model, -1)
	assert.Error(t, err)
}

func TestPlaybackRealTimer(t *testing.T) {
	cfg, err := ParseString("# simulation server configuration file\n#VALUE LOG\nd,v\nDELAY,I7U\n5,1\n5,2\n5,3\n")
	require.NoError(t, err)
	mem := NewMemory(LayoutFor(cfg.Model))
	regs, err := NewRegisterMap(mem, DefaultSwapMode)
	require.NoError(t, err)
	pb, err := NewPlayback(regs, cfg.Model, 1)
	require.NoError(t, err)

	done := make(chan struct{})
	pb.OnStateChanged(func(s State) {
		if s == Stopped {
			close(done)
		}
	})
	pb.Start()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not complete")
	}
	values, err := mem.ReadInputs(7, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint16{3}, values)
}
