//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetCursorPos = user32.NewProc("GetCursorPos")
)

const (
	INPUT_MOUSE    = 0
	INPUT_KEYBOARD = 1

	MOUSEEVENTF_LEFTDOWN  = 0x0002
	MOUSEEVENTF_LEFTUP    = 0x0004
	MOUSEEVENTF_RIGHTDOWN = 0x0008
	MOUSEEVENTF_RIGHTUP   = 0x0010

	KEYEVENTF_KEYUP = 0x0002
)

// Windows virtual key codes
var windowsKeyCodes = map[Key]uint16{
	KeyReturn:  0x0D,
	KeySpace:   0x20,
	KeyEscape:  0x1B,
	KeyControl: 0x11,
	KeyCommand: 0x5B, // Left Windows
	KeyV:       0x56,
}

type POINT struct {
	X, Y int32
}

type MOUSEINPUT struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// mouseINPUT and keyboardINPUT share the size of the C INPUT union
type mouseINPUT struct {
	Type uint32
	Mi   MOUSEINPUT
}

type keyboardINPUT struct {
	Type uint32
	Ki   KEYBDINPUT
	_    [8]byte
}

// Native injects input through user32 SendInput
type Native struct{}

// NewNative creates a user32 driver
func NewNative() (Driver, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return &Native{}, nil
}

// MoveTo places the pointer at x, y
func (n *Native) MoveTo(x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if ret == 0 {
		return &ActionError{Action: "move pointer", Err: err}
	}
	return nil
}

// Click presses and releases b at the current position
func (n *Native) Click(b Button) error {
	var down, up uint32
	switch b {
	case ButtonLeft:
		down, up = MOUSEEVENTF_LEFTDOWN, MOUSEEVENTF_LEFTUP
	case ButtonRight:
		down, up = MOUSEEVENTF_RIGHTDOWN, MOUSEEVENTF_RIGHTUP
	default:
		return &ActionError{Action: "click", Err: fmt.Errorf("invalid button %s", b)}
	}

	inputs := [2]mouseINPUT{
		{Type: INPUT_MOUSE, Mi: MOUSEINPUT{DwFlags: down}},
		{Type: INPUT_MOUSE, Mi: MOUSEINPUT{DwFlags: up}},
	}
	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		return &ActionError{Action: "click " + b.String() + " button", Err: err}
	}
	return nil
}

// KeyTap presses and releases k
func (n *Native) KeyTap(k Key) error {
	if err := n.key(k, true); err != nil {
		return &ActionError{Action: "press key " + k.String(), Err: err}
	}
	if err := n.key(k, false); err != nil {
		return &ActionError{Action: "release key " + k.String(), Err: err}
	}
	return nil
}

// KeyDown holds k
func (n *Native) KeyDown(k Key) error {
	if err := n.key(k, true); err != nil {
		return &ActionError{Action: "hold key " + k.String(), Err: err}
	}
	return nil
}

// KeyUp releases k
func (n *Native) KeyUp(k Key) error {
	if err := n.key(k, false); err != nil {
		return &ActionError{Action: "release key " + k.String(), Err: err}
	}
	return nil
}

func (n *Native) key(k Key, pressed bool) error {
	vk, ok := windowsKeyCodes[k]
	if !ok {
		return fmt.Errorf("no virtual key code for %s", k)
	}

	var flags uint32
	if !pressed {
		flags = KEYEVENTF_KEYUP
	}

	input := keyboardINPUT{Type: INPUT_KEYBOARD, Ki: KEYBDINPUT{WVk: vk, DwFlags: flags}}
	ret, _, err := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&input)),
		unsafe.Sizeof(input),
	)
	if ret != 1 {
		return err
	}
	return nil
}

// Location returns the current pointer position
func (n *Native) Location() (int, int, error) {
	var pt POINT
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return 0, 0, &ActionError{Action: "read pointer position", Err: err}
	}
	return int(pt.X), int(pt.Y), nil
}
