package bitstream

const (
	// StuffWidth is the run length after which CAN inserts a stuff bit.
	StuffWidth = 5

	// TrailerLength covers CRC delimiter, ACK slot, ACK delimiter, end of
	// frame and inter-frame spacing. These bits are never stuffed.
	TrailerLength = 13
)

// window is a FIFO of the last n bits seen by a stuffing scan.
type window struct {
	bits []bool
	size int
}

func newWindow(size int) window {
	return window{bits: make([]bool, 0, size+1), size: size}
}

// add appends bit, evicting the oldest bit once the window holds size bits.
func (w *window) add(bit bool) {
	w.bits = append(w.bits, bit)
	if len(w.bits) > w.size {
		w.bits = w.bits[1:]
	}
}

func (w *window) full() bool {
	return len(w.bits) == w.size
}

func (w *window) contains(bit bool) bool {
	for _, b := range w.bits {
		if b == bit {
			return true
		}
	}
	return false
}

// stuffLimit is the first index of the unstuffed trailer.
func stuffLimit(length int) int {
	if length < TrailerLength {
		return 0
	}
	return length - TrailerLength
}

// Stuff inserts a bit of opposite value after every run of n identical bits,
// leaving the final TrailerLength bits untouched. An n below 1 disables
// stuffing.
func Stuff(bits Bits, n int) Bits {
	if n < 1 {
		return bits.Clone()
	}
	out := make(Bits, 0, len(bits)+len(bits)/n+1)
	win := newWindow(n)
	limit := stuffLimit(len(bits))

	for i, bit := range bits {
		out = append(out, bit)
		win.add(bit)

		if !win.full() || i >= limit {
			continue
		}
		if !win.contains(true) {
			out = append(out, true)
			win.add(true)
		} else if !win.contains(false) {
			out = append(out, false)
			win.add(false)
		}
	}
	return out
}

// Unstuff removes stuff bits inserted by Stuff. The window follows the
// transmitted stream, so a dropped stuff bit still counts toward the next run.
func Unstuff(bits Bits, n int) Bits {
	if n < 1 {
		return bits.Clone()
	}
	out := make(Bits, 0, len(bits))
	win := newWindow(n)
	limit := stuffLimit(len(bits))

	for i, bit := range bits {
		if i >= limit || !win.full() || (win.contains(true) && win.contains(false)) {
			out = append(out, bit)
		}
		win.add(bit)
	}
	return out
}
