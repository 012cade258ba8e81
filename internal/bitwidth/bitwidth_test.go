package bitwidth

import (
	"errors"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		width uint
		want  uint64
	}{
		{0, 0},
		{1, 0x1},
		{3, 0x7},
		{11, 0x7FF},
		{18, 0x3FFFF},
		{29, 0x1FFFFFFF},
		{64, 0xFFFFFFFFFFFFFFFF},
		{70, 0xFFFFFFFFFFFFFFFF},
	}
	for _, tt := range tests {
		if got := Mask(tt.width); got != tt.want {
			t.Errorf("Mask(%d) = 0x%X, want 0x%X", tt.width, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check("identifier", 0x7FF, 11); err != nil {
		t.Fatalf("0x7FF in 11 bits: unexpected error %v", err)
	}

	err := Check("identifier", 0x800, 11)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *RangeError, got %v", err)
	}
	if rangeErr.Field != "identifier" || rangeErr.Width != 11 || rangeErr.Value != 0x800 {
		t.Errorf("unexpected error contents: %+v", rangeErr)
	}
	if rangeErr.Error() != "bitwidth: identifier value 0x800 exceeds 11 bits" {
		t.Errorf("unexpected message %q", rangeErr.Error())
	}
}
