package mbsim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// State is the lifecycle state of a Playback
type State uint8

const (
	// Stopped is the initial state, and the state after Stop or after the last loop completes
	Stopped State = iota
	// Playing means a row is applied and the next one is scheduled
	Playing
	// Paused keeps the current row applied with nothing scheduled
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	}
	return fmt.Sprintf("State(%d)", s)
}

// Timer is a pending single-shot callback
type Timer interface {
	Stop() bool
}

// Scheduler arranges for fn to be called once, on its own goroutine, after d
type Scheduler func(d time.Duration, fn func()) Timer

func afterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// PlaybackOption configures a Playback
type PlaybackOption func(*Playback)

// WithLogger sets the logger, the default discards everything
func WithLogger(logger *slog.Logger) PlaybackOption {
	return func(p *Playback) {
		p.log = logger
	}
}

// WithScheduler replaces the time.AfterFunc based scheduler
func WithScheduler(s Scheduler) PlaybackOption {
	return func(p *Playback) {
		p.schedule = s
	}
}

// Status is a consistent snapshot of a Playback
type Status struct {
	State State
	Row   int
	Loop  int
}

/*
Playback applies the rows of a Model to a RegisterMap, one row at a time, waiting each row's delay before applying
the next. After the last row it starts again from the first, until the loop count is reached (0 loops forever).

All control calls and the timer callback are serialized by one mutex. Observers registered with OnRowChanged and
OnStateChanged are called with that mutex held, on whichever goroutine caused the change, so they must not call back
in to the Playback and should hand work off to their own goroutine if it may block.
*/
type Playback struct {
	mu       sync.Mutex
	regs     *RegisterMap
	model    *Model
	columns  []Column
	loops    int
	log      *slog.Logger
	schedule Scheduler
	timer    Timer
	// epoch invalidates callbacks that were scheduled before the last pause or stop
	epoch        uint64
	row          int
	loop         int
	state        State
	rowObservers []func(int)
	stObservers  []func(State)
}

// NewPlayback prepares a playback of model in to regs. The model should have passed Validate.
func NewPlayback(regs *RegisterMap, model *Model, loops int, opts ...PlaybackOption) (*Playback, error) {
	if regs == nil {
		return nil, errors.New("playback needs a register map")
	}
	if model == nil || len(model.Rows) == 0 {
		return nil, errors.New("playback needs at least one data row")
	}
	if loops < 0 {
		return nil, fmt.Errorf("loop count %v cannot be negative", loops)
	}
	p := &Playback{
		regs:     regs,
		model:    model,
		columns:  model.AddressedColumns(),
		loops:    loops,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		schedule: afterFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// OnRowChanged registers fn to be called with the row index every time a row is applied
func (p *Playback) OnRowChanged(fn func(row int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rowObservers = append(p.rowObservers, fn)
}

// OnStateChanged registers fn to be called with the new state on every transition
func (p *Playback) OnStateChanged(fn func(state State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stObservers = append(p.stObservers, fn)
}

// State returns the current lifecycle state
func (p *Playback) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Row returns the index of the row most recently applied
func (p *Playback) Row() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.row
}

// Loop returns the number of completed passes over the rows
func (p *Playback) Loop() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loop
}

// Status returns state, row and loop together
func (p *Playback) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{p.state, p.row, p.loop}
}

// Start applies the first row and schedules the rest. It does nothing unless the playback is Stopped.
func (p *Playback) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Stopped {
		return
	}

	p.log.Info("Starting playback", "rows", len(p.model.Rows), "loops", p.loops)
	p.row = 0
	p.loop = 0
	p.apply(p.model.Rows[0])
	p.setState(Playing)
	p.notify()
	p.scheduleNext()
}

// Pause cancels the pending row, keeping the current row and loop. It does nothing unless Playing.
func (p *Playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing {
		return
	}

	p.log.Info("Pausing playback", "row", p.row+1)
	p.cancel()
	p.setState(Paused)
}

// Resume schedules the next row after the full delay of the current row. It does nothing unless Paused.
func (p *Playback) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Paused {
		return
	}

	p.log.Info("Resuming playback", "row", p.row+1)
	p.setState(Playing)
	p.scheduleNext()
}

// Stop cancels any pending row and rewinds to the first row. Register contents are left as they are.
func (p *Playback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Stopped {
		return
	}

	p.log.Info("Stopping playback")
	p.cancel()
	p.row = 0
	p.loop = 0
	p.setState(Stopped)
}

// Close stops the playback
func (p *Playback) Close() error {
	p.Stop()
	return nil
}

// tick is the timer callback, epoch is the value it was scheduled with.
func (p *Playback) tick(epoch uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || epoch != p.epoch {
		return
	}
	p.timer = nil

	p.row++
	if p.row >= len(p.model.Rows) {
		p.loop++
		if p.loops > 0 && p.loop >= p.loops {
			p.log.Info("Playback completed", "loops", p.loops)
			p.row = len(p.model.Rows) - 1
			p.setState(Stopped)
			return
		}
		p.log.Debug("Loop started", "loop", p.loop+1)
		p.row = 0
	}

	p.apply(p.model.Rows[p.row])
	p.notify()
	p.scheduleNext()
}

// scheduleNext arms the timer with the current row's delay. Lock must be held.
func (p *Playback) scheduleNext() {
	p.epoch++
	epoch := p.epoch
	delay := time.Duration(max(p.model.Rows[p.row].Delay, 0)) * time.Millisecond
	p.timer = p.schedule(delay, func() { p.tick(epoch) })
}

// cancel disarms the timer and invalidates anything already in flight. Lock must be held.
func (p *Playback) cancel() {
	p.epoch++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// apply writes every value the row holds for an addressed column. Lock must be held.
func (p *Playback) apply(row *Row) {
	p.regs.Atomic(func() {
		for _, c := range p.columns {
			if !row.IsPresent(c.Index) {
				continue
			}
			value, ok := row.Value(c.Index)
			if !ok {
				continue
			}
			p.regs.Write(c.Address, value)
		}
	})
}

func (p *Playback) notify() {
	for _, fn := range p.rowObservers {
		fn(p.row)
	}
}

func (p *Playback) setState(s State) {
	p.state = s
	for _, fn := range p.stObservers {
		fn(s)
	}
}
