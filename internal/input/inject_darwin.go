//go:build darwin

package input

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <ApplicationServices/ApplicationServices.h>

// Check if we have accessibility permissions
bool hasAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

CGPoint getCurrentMousePosition() {
    CGEventRef event = CGEventCreate(NULL);
    CGPoint cursor = CGEventGetLocation(event);
    CFRelease(event);
    return cursor;
}

// Move to an absolute position
int injectMouseMoveTo(CGFloat x, CGFloat y) {
    CGEventRef event = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, CGPointMake(x, y), kCGMouseButtonLeft);
    if (event == NULL) {
        return -1;
    }
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
    return 0;
}

int injectMouseButton(int button, bool pressed) {
    CGMouseButton cgButton;
    CGEventType eventType;

    switch (button) {
        case 1:
            cgButton = kCGMouseButtonLeft;
            eventType = pressed ? kCGEventLeftMouseDown : kCGEventLeftMouseUp;
            break;
        case 2:
            cgButton = kCGMouseButtonRight;
            eventType = pressed ? kCGEventRightMouseDown : kCGEventRightMouseUp;
            break;
        default:
            return -1;
    }

    CGPoint currentPos = getCurrentMousePosition();
    CGEventRef event = CGEventCreateMouseEvent(NULL, eventType, currentPos, cgButton);
    if (event == NULL) {
        return -1;
    }
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
    return 0;
}

int injectKey(CGKeyCode keyCode, bool pressed, CGEventFlags flags) {
    CGEventRef event = CGEventCreateKeyboardEvent(NULL, keyCode, pressed);
    if (event == NULL) {
        return -1;
    }
    CGEventSetFlags(event, flags);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
    return 0;
}
*/
import "C"
import (
	"errors"
	"fmt"
	"sync"
)

// macOS virtual key codes (kVK_*)
var macKeyCodes = map[Key]uint16{
	KeyReturn:  0x24,
	KeySpace:   0x31,
	KeyEscape:  0x35,
	KeyControl: 0x3B,
	KeyCommand: 0x37,
	KeyV:       0x09,
}

var macModifierFlags = map[Key]C.CGEventFlags{
	KeyControl: C.CGEventFlags(C.kCGEventFlagMaskControl),
	KeyCommand: C.CGEventFlags(C.kCGEventFlagMaskCommand),
}

// Native injects input through CoreGraphics. Held modifiers are tracked so
// that keys tapped while holding them carry the right event flags.
type Native struct {
	mu   sync.Mutex
	held C.CGEventFlags
}

// NewNative creates a CoreGraphics driver. The process must be trusted for
// accessibility.
func NewNative() (Driver, error) {
	if !bool(C.hasAccessibilityPermissions()) {
		return nil, errors.New("accessibility permission required: enable it in System Settings > Privacy & Security > Accessibility")
	}
	return &Native{}, nil
}

// MoveTo places the pointer at x, y
func (n *Native) MoveTo(x, y int) error {
	if C.injectMouseMoveTo(C.CGFloat(x), C.CGFloat(y)) != 0 {
		return &ActionError{Action: "move pointer", Err: fmt.Errorf("CGEventCreateMouseEvent failed at (%d, %d)", x, y)}
	}
	return nil
}

// Click presses and releases b at the current position
func (n *Native) Click(b Button) error {
	if C.injectMouseButton(C.int(b), C.bool(true)) != 0 {
		return &ActionError{Action: "press " + b.String() + " button", Err: errors.New("CGEventCreateMouseEvent failed")}
	}
	if C.injectMouseButton(C.int(b), C.bool(false)) != 0 {
		return &ActionError{Action: "release " + b.String() + " button", Err: errors.New("CGEventCreateMouseEvent failed")}
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
	code, ok := macKeyCodes[k]
	if !ok {
		return fmt.Errorf("no key code for %s", k)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if flag, isModifier := macModifierFlags[k]; isModifier {
		if pressed {
			n.held |= flag
		} else {
			n.held &^= flag
		}
	}

	if C.injectKey(C.CGKeyCode(code), C.bool(pressed), n.held) != 0 {
		return errors.New("CGEventCreateKeyboardEvent failed")
	}
	return nil
}

// Location returns the current pointer position
func (n *Native) Location() (int, int, error) {
	pos := C.getCurrentMousePosition()
	return int(pos.x), int(pos.y), nil
}
