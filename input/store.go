package input

// pair is a two-slot ring of snapshots for one regime. A capture fully
// replaces current and demotes the old current to previous.
type pair struct {
	current  Snapshot
	previous Snapshot
}

func (p *pair) capture(snap Snapshot) {
	p.previous = p.current
	p.current = snap
}

// Store holds the variable-regime and fixed-regime snapshot pairs and
// polls a Devices source on behalf of the frame loop.
//
// Regime selection is structural: Variable and Fixed return frames
// permanently bound to one pair, and Now consults the phase the frame
// loop is currently in, so user code cannot accidentally compare edges
// across regimes.
type Store struct {
	devices  Devices
	variable pair
	fixed    pair
	inFixed  func() bool
}

// NewStore creates a store polling the given device source.
func NewStore(devices Devices) *Store {
	return &Store{devices: devices}
}

// BindPhase installs the frame loop's "currently in fixed update"
// query. Now uses it to pick the right regime automatically.
func (s *Store) BindPhase(inFixed func() bool) {
	s.inFixed = inFixed
}

// CaptureVariable polls the devices into the variable-regime pair.
// The frame loop calls this exactly once before each variable update.
func (s *Store) CaptureVariable() {
	s.variable.capture(s.devices.Poll())
}

// CaptureFixed polls the devices into the fixed-regime pair. The frame
// loop calls this exactly once before each fixed update, including each
// update of a multi-tick burst.
func (s *Store) CaptureFixed() {
	s.fixed.capture(s.devices.Poll())
}

// Variable returns the frame bound to the variable-regime pair.
func (s *Store) Variable() *Frame {
	return &Frame{pair: &s.variable}
}

// Fixed returns the frame bound to the fixed-regime pair.
func (s *Store) Fixed() *Frame {
	return &Frame{pair: &s.fixed}
}

// Now returns the frame for the regime the loop is currently running.
// Without a bound phase it falls back to the variable regime.
func (s *Store) Now() *Frame {
	if s.inFixed != nil && s.inFixed() {
		return s.Fixed()
	}
	return s.Variable()
}

// Frame answers queries against one regime's current/previous pair.
// All edge detection compares strictly within that pair.
type Frame struct {
	pair *pair
}

// Current returns the regime's current snapshot.
func (f *Frame) Current() Snapshot { return f.pair.current }

// Previous returns the regime's previous snapshot.
func (f *Frame) Previous() Snapshot { return f.pair.previous }

// KeyDown reports whether k is held in the current snapshot.
func (f *Frame) KeyDown(k Key) bool {
	return f.pair.current.KeyDown(k)
}

// KeyPressed reports a down edge: held now, up in the previous capture.
func (f *Frame) KeyPressed(k Key) bool {
	return f.pair.current.KeyDown(k) && !f.pair.previous.KeyDown(k)
}

// KeyReleased reports an up edge: up now, held in the previous capture.
func (f *Frame) KeyReleased(k Key) bool {
	return !f.pair.current.KeyDown(k) && f.pair.previous.KeyDown(k)
}

// MouseButton reports whether b is held in the current snapshot.
func (f *Frame) MouseButton(b MouseButton) bool {
	return f.pair.current.Buttons.Has(b)
}

// MouseButtonPressed reports a down edge for b.
func (f *Frame) MouseButtonPressed(b MouseButton) bool {
	return f.pair.current.Buttons.Has(b) && !f.pair.previous.Buttons.Has(b)
}

// MouseButtonReleased reports an up edge for b.
func (f *Frame) MouseButtonReleased(b MouseButton) bool {
	return !f.pair.current.Buttons.Has(b) && f.pair.previous.Buttons.Has(b)
}

// CursorPosition returns the pointer position at capture time.
func (f *Frame) CursorPosition() (int, int) {
	return f.pair.current.CursorX, f.pair.current.CursorY
}

// CursorDelta returns the pointer movement between the previous and
// current captures of this regime.
func (f *Frame) CursorDelta() (int, int) {
	return f.pair.current.CursorX - f.pair.previous.CursorX,
		f.pair.current.CursorY - f.pair.previous.CursorY
}

// WheelDelta returns the scroll accumulated between the previous and
// current captures of this regime.
func (f *Frame) WheelDelta() int {
	return f.pair.current.Wheel - f.pair.previous.Wheel
}

// Controller returns the current snapshot of the controller slot.
func (f *Frame) Controller(index int) (ControllerSnapshot, error) {
	if index < 0 || index >= MaxControllers {
		return ControllerSnapshot{}, ErrControllerIndex
	}
	return f.pair.current.Controllers[index], nil
}

// PreviousController returns the previous snapshot of the controller slot.
func (f *Frame) PreviousController(index int) (ControllerSnapshot, error) {
	if index < 0 || index >= MaxControllers {
		return ControllerSnapshot{}, ErrControllerIndex
	}
	return f.pair.previous.Controllers[index], nil
}
