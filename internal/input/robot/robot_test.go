package robot

import (
	"testing"

	"icredeemer/internal/input"
)

// TestKeyMapping tests that every key has a robotgo name
func TestKeyMapping(t *testing.T) {
	for _, k := range []input.Key{input.KeyReturn, input.KeySpace, input.KeyEscape, input.KeyControl, input.KeyCommand, input.KeyV} {
		if _, err := robotKey(k); err != nil {
			t.Errorf("Expected robotgo mapping for %s: %v", k, err)
		}
	}
	if _, err := robotKey(input.Key(99)); err == nil {
		t.Error("Expected error for unmapped key")
	}
}

// TestInvalidButton tests that an unknown button fails before reaching robotgo
func TestInvalidButton(t *testing.T) {
	err := New().Click(input.Button(99))
	if _, ok := err.(*input.ActionError); !ok {
		t.Errorf("Expected *input.ActionError, got %v", err)
	}
}
