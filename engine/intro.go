package engine

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/teamstor/team-stor-engine/input"
)

const (
	introHoldSeconds = 1.2
	introFadeSeconds = 0.6
)

// Intro is the optional bootstrap context: it plays a short timed
// sequence (hold the logo, fade to black) through its task scheduler
// and then hands control to the real initial context. Pressing the
// acknowledge input skips straight to the handoff. All sequence state
// lives on the instance, so repeated bootstraps don't interfere.
type Intro struct {
	ContextState

	next Context
	logo *ebiten.Image

	fade float64
	done bool
}

// NewIntro creates a bootstrap context that transitions to next when
// the sequence finishes. logo may be nil.
func NewIntro(next Context, logo *ebiten.Image) *Intro {
	return &Intro{next: next, logo: logo}
}

// Enter schedules the intro sequence.
func (i *Intro) Enter(prev Context) {
	i.fade = 0
	i.done = false

	i.Tasks().Schedule(i.holdStage())
}

// holdStage waits out the logo hold, then chains the fade stage.
func (i *Intro) holdStage() Task {
	first := true
	return func() Wait {
		if first {
			first = false
			return WaitSeconds(introHoldSeconds)
		}
		i.Tasks().Schedule(i.fadeStage())
		return Done()
	}
}

// fadeStage raises the fade one frame at a time, then finishes.
func (i *Intro) fadeStage() Task {
	return func() Wait {
		if i.done {
			return Done()
		}
		i.fade += i.Loop().Clock().Delta() / introFadeSeconds
		if i.fade >= 1 {
			i.fade = 1
			i.finish()
			return Done()
		}
		return NextFrame()
	}
}

// Leave implements Context.
func (i *Intro) Leave(next Context) {}

// Update watches for the acknowledge input and skips ahead on it.
func (i *Intro) Update(dt, total float64, tick uint64) {
	if i.done {
		return
	}

	frame := i.Loop().Input().Now()
	if frame.KeyPressed(ebiten.KeySpace) ||
		frame.KeyPressed(ebiten.KeyEnter) ||
		frame.MouseButtonPressed(input.MouseLeft) {
		i.finish()
	}
}

func (i *Intro) finish() {
	if i.done {
		return
	}
	i.done = true
	i.Loop().SetContext(i.next)
}

// FixedUpdate implements Context; the intro has no simulation.
func (i *Intro) FixedUpdate(tick uint64) {}

// Draw renders the logo and the fade overlay.
func (i *Intro) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	if i.logo != nil {
		bounds := screen.Bounds()
		logoBounds := i.logo.Bounds()
		var op ebiten.DrawImageOptions
		op.GeoM.Translate(
			float64(bounds.Dx()-logoBounds.Dx())/2,
			float64(bounds.Dy()-logoBounds.Dy())/2,
		)
		screen.DrawImage(i.logo, &op)
	}

	if i.fade > 0 {
		w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
		overlay := color.RGBA{A: uint8(i.fade * 255)}
		vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), overlay, false)
	}
}
