package engine

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/teamstor/team-stor-engine/clock"
	"github.com/teamstor/team-stor-engine/input"
)

// Loop orchestrates the per-frame sequence: advance the clock, capture
// input, run the variable update, drain zero or more fixed updates, and
// draw the active context. It implements ebiten.Game so the Ebiten host
// drives it.
type Loop struct {
	clock *clock.Clock
	input *input.Store

	active  Context
	inFixed bool

	viewportW int
	viewportH int

	beforeUpdate hookList
	afterUpdate  hookList
	beforeFixed  hookList
	afterFixed   hookList
	transitions  []func(old, new Context)

	clearColor color.Color
	quit       bool

	// now is swapped out in tests for deterministic frames.
	now func() time.Time
}

// NewLoop builds a loop from a validated config and the given input
// store. The store's regime selection is bound to the loop's phase so
// queries inside fixed updates automatically see the fixed pair.
func NewLoop(cfg Config, store *input.Store) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := clock.New()
	if err := c.SetFixedUpdatesPerSecond(cfg.FixedUpdatesPerSecond); err != nil {
		return nil, err
	}

	l := &Loop{
		clock:        c,
		input:        store,
		viewportW:    cfg.WindowWidth,
		viewportH:    cfg.WindowHeight,
		clearColor:   color.Black,
		now:          time.Now,
		beforeUpdate: hookList{phase: "before-update"},
		afterUpdate:  hookList{phase: "after-update"},
		beforeFixed:  hookList{phase: "before-fixed"},
		afterFixed:   hookList{phase: "after-fixed"},
	}
	store.BindPhase(l.InFixedUpdate)
	return l, nil
}

// Clock returns the loop's clock.
func (l *Loop) Clock() *clock.Clock { return l.clock }

// Input returns the loop's input store.
func (l *Loop) Input() *input.Store { return l.input }

// Active returns the active context, or nil.
func (l *Loop) Active() Context { return l.active }

// InFixedUpdate reports whether the loop is currently inside the
// fixed-update phase. Clock-sensitive queries consult this instead of
// trusting caller intent.
func (l *Loop) InFixedUpdate() bool { return l.inFixed }

// Viewport returns the current viewport size.
func (l *Loop) Viewport() (int, int) { return l.viewportW, l.viewportH }

// SetClearColor sets the color the screen is cleared to before the
// active context draws.
func (l *Loop) SetClearColor(c color.Color) { l.clearColor = c }

// Quit makes the next Update return ebiten.Termination.
func (l *Loop) Quit() { l.quit = true }

// OnBeforeUpdate subscribes to the notification fired before each
// variable update.
func (l *Loop) OnBeforeUpdate(fn func()) { l.beforeUpdate.subscribe(fn) }

// OnAfterUpdate subscribes to the notification fired after each
// variable update.
func (l *Loop) OnAfterUpdate(fn func()) { l.afterUpdate.subscribe(fn) }

// OnBeforeFixed subscribes to the notification fired before each fixed
// update.
func (l *Loop) OnBeforeFixed(fn func()) { l.beforeFixed.subscribe(fn) }

// OnAfterFixed subscribes to the notification fired after each fixed
// update.
func (l *Loop) OnAfterFixed(fn func()) { l.afterFixed.subscribe(fn) }

// OnTransition subscribes to the global context transition event. The
// resource cache's sweep subscribes here.
func (l *Loop) OnTransition(fn func(old, new Context)) {
	l.transitions = append(l.transitions, fn)
}

// SetContext transitions the runtime to ctx: the old context is
// notified of departure, the transition event fires, the new context is
// bound and notified of arrival, then installed as active.
//
// Setting the instance that is already active is not a no-op: leave,
// transition and enter still fire. Flows that re-enter their own
// context rely on this.
func (l *Loop) SetContext(ctx Context) {
	old := l.active

	if old != nil {
		old.Leave(ctx)
	}

	for _, fn := range l.transitions {
		fn(old, ctx)
	}

	if ctx != nil {
		if bound, ok := ctx.(runtimeBound); ok {
			bound.bindRuntime(l)
		}
		ctx.Enter(old)
	}

	l.active = ctx
}

// Update runs one variable frame followed by the fixed-update drain.
// It is called by the Ebiten host once per display frame.
func (l *Loop) Update() error {
	if l.quit {
		return ebiten.Termination
	}

	l.clock.Advance(l.now())
	l.input.CaptureVariable()

	l.beforeUpdate.fire()

	// The task step belongs to the context whose update just ran, even
	// if that update switched contexts mid-frame.
	if updated := l.active; updated != nil {
		updated.Update(l.clock.Delta(), l.clock.Total(), l.clock.VariableTicks())
		if bound, ok := updated.(runtimeBound); ok {
			bound.contextTasks().Advance(l.clock.Delta())
		}
	}

	l.clock.CountVariableTick()
	l.afterUpdate.fire()

	for l.clock.PendingFixed() {
		l.inFixed = true

		l.input.CaptureFixed()
		l.beforeFixed.fire()

		if l.active != nil {
			l.active.FixedUpdate(l.clock.FixedTicks())
		}

		l.clock.CountFixedTick()
		l.afterFixed.fire()
		l.clock.ConsumeFixed()

		l.inFixed = false
	}

	return nil
}

// Draw clears the screen and lets the active context render into it.
func (l *Loop) Draw(screen *ebiten.Image) {
	screen.Fill(l.clearColor)
	if l.active != nil {
		l.active.Draw(screen)
	}
}

// Layout records the viewport size and keeps a 1:1 mapping to the host
// window.
func (l *Loop) Layout(outsideWidth, outsideHeight int) (int, int) {
	l.viewportW = outsideWidth
	l.viewportH = outsideHeight
	return outsideWidth, outsideHeight
}

// Stats snapshots the loop's counters and per-listener hook timings.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		VariableTicks: l.clock.VariableTicks(),
		FixedTicks:    l.clock.FixedTicks(),
		Delta:         l.clock.Delta(),
		Total:         l.clock.Total(),
		Phases: []PhaseStats{
			l.beforeUpdate.collect(),
			l.afterUpdate.collect(),
			l.beforeFixed.collect(),
			l.afterFixed.collect(),
		},
	}
}
