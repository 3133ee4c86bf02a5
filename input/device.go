// Package input captures per-frame snapshots of the host input devices
// and answers edge-triggered queries against them. Two snapshot pairs
// are kept, one per update regime, so that pressed/released detection
// inside a fixed update never compares against variable-rate history.
package input

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kamstrup/intmap"
)

// Key identifies a keyboard key. Ebiten's key codes are used directly
// since Ebiten is the host device collaborator.
type Key = ebiten.Key

// MaxControllers is the number of controller slots the store tracks.
const MaxControllers = 4

// MaxControllerAxes is the number of axes recorded per controller.
const MaxControllerAxes = 6

// ErrControllerIndex is returned for controller indices outside [0, MaxControllers).
var ErrControllerIndex = errors.New("input: controller index out of range")

// MouseButton identifies a pointer button.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	mouseButtonCount
)

// MouseButtonSet is a bitmask of held pointer buttons.
type MouseButtonSet uint8

// Has reports whether b is held in the set.
func (s MouseButtonSet) Has(b MouseButton) bool {
	return s&(1<<b) != 0
}

// With returns the set with b added.
func (s MouseButtonSet) With(b MouseButton) MouseButtonSet {
	return s | 1<<b
}

// ControllerSnapshot is the polled state of one controller slot.
type ControllerSnapshot struct {
	Attached bool
	Buttons  uint32
	Axes     [MaxControllerAxes]float64
}

// Button reports whether the standard button with the given index is held.
func (c ControllerSnapshot) Button(index int) bool {
	if index < 0 || index >= 32 {
		return false
	}
	return c.Buttons&(1<<index) != 0
}

// Snapshot is an immutable capture of all polled devices at one instant.
// The zero value behaves as "nothing held, cursor at origin".
type Snapshot struct {
	CursorX, CursorY int
	Wheel            int
	Buttons          MouseButtonSet
	Controllers      [MaxControllers]ControllerSnapshot

	keys *intmap.Map[ebiten.Key, struct{}]
}

// NewSnapshot builds a snapshot with the given held keys. Device
// implementations use this; queries go through the Frame accessors.
func NewSnapshot(keys []ebiten.Key) Snapshot {
	var snap Snapshot
	if len(keys) > 0 {
		snap.keys = intmap.New[ebiten.Key, struct{}](len(keys) * 2)
		for _, k := range keys {
			snap.keys.Put(k, struct{}{})
		}
	}
	return snap
}

// KeyDown reports whether k was held at capture time.
func (s Snapshot) KeyDown(k ebiten.Key) bool {
	if s.keys == nil {
		return false
	}
	_, ok := s.keys.Get(k)
	return ok
}

// Devices is the host input collaborator: a poll-once-per-call source
// of device state. The store wraps it with no additional filtering.
type Devices interface {
	Poll() Snapshot
}
