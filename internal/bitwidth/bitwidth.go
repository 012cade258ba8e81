// Package bitwidth holds the range checks used wherever a protocol field narrower
// than its Go type (3, 4, 7, 11, 15, 18 or 29 bits) is built from a raw number.
package bitwidth

import "fmt"

// RangeError reports a value that does not fit its declared field width.
type RangeError struct {
	Field string
	Width uint
	Value uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bitwidth: %s value 0x%X exceeds %d bits", e.Field, e.Value, e.Width)
}

// Mask returns a mask with the low width bits set.
func Mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Fits reports whether value can be represented in width bits.
func Fits(value uint64, width uint) bool {
	return value&^Mask(width) == 0
}

// Check returns a *RangeError if value does not fit in width bits.
func Check(field string, value uint64, width uint) error {
	if !Fits(value, width) {
		return &RangeError{Field: field, Width: width, Value: value}
	}
	return nil
}
