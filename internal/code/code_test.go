package code

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"short plain", "ABCD12345678", "ABCD12345678"},
		{"short dashed", "ABCD-1234-5678", "ABCD12345678"},
		{"long dashed", "DEMO-REDE-EMER-IDLE", "DEMOREDEEMERIDLE"},
		{"long plain", "DEMOREDEEMERIDLE", "DEMOREDEEMERIDLE"},
		{"stray dashes", "--ABCD-1234-5678--", "ABCD12345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeRejectsBadLengths(t *testing.T) {
	for _, raw := range []string{"", "-", "ABC", "ABCD1234567", "ABCD123456789", "ABCD-1234-5678-XYZ", "ABCD1234567890123"} {
		if _, err := Normalize(raw); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("Normalize(%q): expected ErrInvalidLength, got %v", raw, err)
		}
	}
}
