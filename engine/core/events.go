package core

// HostEventCode identifies a raw event coming from the windowing host.
type HostEventCode int

const (
	HOST_EVENT_RESIZED HostEventCode = iota + 1
	HOST_EVENT_CLOSE_REQUESTED
	// Key pressed, released or repeated. Uses Key, Pressed and Repeat.
	HOST_EVENT_KEY
	// Pointer button pressed or released. Uses Button and Pressed.
	HOST_EVENT_BUTTON
	// Pointer moved. Uses X and Y in window pixels.
	HOST_EVENT_MOUSE_MOVED
	// Wheel or trackpad scroll. Uses ScrollX and ScrollY.
	HOST_EVENT_MOUSE_WHEEL
	HOST_EVENT_REDRAW_REQUESTED
	// The host drained its event queue and is about to wait for more.
	HOST_EVENT_ABOUT_TO_IDLE
)

func (c HostEventCode) String() string {
	switch c {
	case HOST_EVENT_RESIZED:
		return "resized"
	case HOST_EVENT_CLOSE_REQUESTED:
		return "close-requested"
	case HOST_EVENT_KEY:
		return "key"
	case HOST_EVENT_BUTTON:
		return "button"
	case HOST_EVENT_MOUSE_MOVED:
		return "mouse-moved"
	case HOST_EVENT_MOUSE_WHEEL:
		return "mouse-wheel"
	case HOST_EVENT_REDRAW_REQUESTED:
		return "redraw-requested"
	case HOST_EVENT_ABOUT_TO_IDLE:
		return "about-to-idle"
	}
	return "unknown"
}

// HostEvent is the platform neutral shape of a raw window event. Only the
// fields named by the code are meaningful.
type HostEvent struct {
	Code    HostEventCode
	Key     KeyCode
	Button  Button
	Pressed bool
	Repeat  bool
	X, Y    float32
	ScrollX float32
	ScrollY float32
	Width   uint32
	Height  uint32
}

// System event codes delivered to layers after translation.
type SystemEventCode int

const (
	// Keyboard key pressed. Data is *KeyEvent.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02
	// Keyboard key released. Data is *KeyEvent.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03
	// Mouse button pressed. Data is *MouseEvent.
	EVENT_CODE_BUTTON_PRESSED SystemEventCode = 0x04
	// Mouse button released. Data is *MouseEvent.
	EVENT_CODE_BUTTON_RELEASED SystemEventCode = 0x05
	// Mouse moved. Data is *MouseEvent.
	EVENT_CODE_MOUSE_MOVED SystemEventCode = 0x06
	// Mouse wheel. Data is *MouseEvent with the Scroll fields set.
	EVENT_CODE_MOUSE_WHEEL SystemEventCode = 0x07
	// Resized/resolution changed from the OS. Data is *SystemEvent.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// EventContext is a normalized event handed to the overlay and the layers.
type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
	Repeat  bool
}

type MouseEvent struct {
	Button  Button
	PosX    float32
	PosY    float32
	ScrollX float32
	ScrollY float32
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}
