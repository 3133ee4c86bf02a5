package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// EbitenDevices polls the Ebiten host for keyboard, pointer and
// controller state. It keeps a running wheel accumulator because Ebiten
// reports per-frame wheel offsets while snapshots record totals.
type EbitenDevices struct {
	keyBuf   []ebiten.Key
	padBuf   []ebiten.GamepadID
	wheelAcc float64
}

// NewEbitenDevices creates a poller for the Ebiten host.
func NewEbitenDevices() *EbitenDevices {
	return &EbitenDevices{
		keyBuf: make([]ebiten.Key, 0, 16),
		padBuf: make([]ebiten.GamepadID, 0, MaxControllers),
	}
}

// Poll captures the host devices once.
func (d *EbitenDevices) Poll() Snapshot {
	d.keyBuf = inpututil.AppendPressedKeys(d.keyBuf[:0])
	snap := NewSnapshot(d.keyBuf)

	snap.CursorX, snap.CursorY = ebiten.CursorPosition()

	_, yoff := ebiten.Wheel()
	d.wheelAcc += yoff
	snap.Wheel = int(d.wheelAcc)

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		snap.Buttons = snap.Buttons.With(MouseLeft)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		snap.Buttons = snap.Buttons.With(MouseMiddle)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		snap.Buttons = snap.Buttons.With(MouseRight)
	}

	d.padBuf = ebiten.AppendGamepadIDs(d.padBuf[:0])
	for slot, id := range d.padBuf {
		if slot >= MaxControllers {
			break
		}
		snap.Controllers[slot] = pollController(id)
	}

	return snap
}

func pollController(id ebiten.GamepadID) ControllerSnapshot {
	ctrl := ControllerSnapshot{Attached: true}

	if ebiten.IsStandardGamepadLayoutAvailable(id) {
		for b := ebiten.StandardGamepadButton(0); b <= ebiten.StandardGamepadButtonMax; b++ {
			if ebiten.IsStandardGamepadButtonPressed(id, b) {
				ctrl.Buttons |= 1 << uint(b)
			}
		}
		for a := ebiten.StandardGamepadAxis(0); a <= ebiten.StandardGamepadAxisMax && int(a) < MaxControllerAxes; a++ {
			ctrl.Axes[a] = ebiten.StandardGamepadAxisValue(id, a)
		}
		return ctrl
	}

	buttons := ebiten.GamepadButtonCount(id)
	for b := 0; b < buttons && b < 32; b++ {
		if ebiten.IsGamepadButtonPressed(id, ebiten.GamepadButton(b)) {
			ctrl.Buttons |= 1 << uint(b)
		}
	}
	axes := ebiten.GamepadAxisCount(id)
	for a := 0; a < axes && a < MaxControllerAxes; a++ {
		ctrl.Axes[a] = ebiten.GamepadAxisValue(id, ebiten.GamepadAxisType(a))
	}
	return ctrl
}
