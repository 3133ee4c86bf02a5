// Package engine runs the frame loop: it advances the clock, captures
// input per regime, drains fixed updates, and dispatches the lifecycle
// of the single active execution context.
package engine

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Context is one unit of application behavior bound to the runtime.
// Exactly one context is active at a time (possibly none). Enter and
// Leave receive the neighboring context of the transition so simple
// flows can hand control back, e.g. an intro returning to a menu.
type Context interface {
	// Enter is called when the context becomes active; prev is the
	// context being left, or nil on the first transition.
	Enter(prev Context)

	// Leave is called when the context stops being active; next is the
	// incoming context, or nil when the runtime shuts down.
	Leave(next Context)

	// Update runs once per variable frame with the frame delta, the
	// total elapsed time and the variable tick counter.
	Update(dt, total float64, tick uint64)

	// FixedUpdate runs once per fixed simulation step.
	FixedUpdate(tick uint64)

	// Draw renders the context into the current viewport.
	Draw(screen *ebiten.Image)
}

// ContextState is an embeddable helper that binds a context to its
// runtime and owns the context's cooperative task scheduler. Embed it
// in a context implementation to get Loop and Tasks access; the loop
// binds it automatically during SetContext.
type ContextState struct {
	loop  *Loop
	tasks Tasks
}

// Loop returns the runtime this context is bound to, or nil before the
// first Enter.
func (s *ContextState) Loop() *Loop { return s.loop }

// Tasks returns the context's cooperative task scheduler.
func (s *ContextState) Tasks() *Tasks { return &s.tasks }

func (s *ContextState) bindRuntime(loop *Loop) { s.loop = loop }

func (s *ContextState) contextTasks() *Tasks { return &s.tasks }

// runtimeBound is satisfied by contexts embedding ContextState. The
// methods are unexported so embedding is the only way in.
type runtimeBound interface {
	bindRuntime(*Loop)
	contextTasks() *Tasks
}
