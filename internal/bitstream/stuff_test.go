package bitstream

import (
	"math/rand"
	"testing"
)

// Base data frame, ID 0x014, one data byte 0x01, before and after stuffing.
const (
	unstuffedFrame = "0," + // SOF
		"00000010100," + // ID
		"0,0,0," + // RTR, IDE, R0
		"0001," + // DLC
		"00000001," + // DF
		"111011101010011," + // CRC
		"1,0,1," + // CRC delim, ACK slot, ACK delim
		"1111111," + // EOF
		"111" // IFS

	stuffedFrame = "0," +
		"000010010100," +
		"0,0,01," +
		"0001," +
		"000001001," +
		"111011101010011," +
		"1,0,1," +
		"1111111," +
		"111"
)

func TestWindow(t *testing.T) {
	w := newWindow(3)
	if w.full() {
		t.Fatalf("empty window reported full")
	}
	w.add(true)
	w.add(true)
	w.add(false)
	if !w.full() {
		t.Fatalf("window with 3 bits not full")
	}
	w.add(false)
	if len(w.bits) != 3 {
		t.Fatalf("window grew to %d bits", len(w.bits))
	}
	w.add(false)
	if w.contains(true) {
		t.Errorf("oldest bits were not evicted: %v", w.bits)
	}
}

func TestStuff(t *testing.T) {
	got := Stuff(MustParse(unstuffedFrame), StuffWidth)
	want := MustParse(stuffedFrame)
	if !got.Equal(want) {
		t.Fatalf("Stuff:\n got  %s\n want %s", got, want)
	}
}

func TestUnstuff(t *testing.T) {
	got := Unstuff(MustParse(stuffedFrame), StuffWidth)
	want := MustParse(unstuffedFrame)
	if !got.Equal(want) {
		t.Fatalf("Unstuff:\n got  %s\n want %s", got, want)
	}
}

func TestStuffTrailerIsExempt(t *testing.T) {
	// 20 recessive bits: only the first 7 are outside the trailer.
	in := MustParse("11111111111111111111")
	got := Stuff(in, StuffWidth)
	want := MustParse("11111 0 11 1111111111111")
	if !got.Equal(want) {
		t.Fatalf("Stuff:\n got  %s\n want %s", got, want)
	}
	if back := Unstuff(got, StuffWidth); !back.Equal(in) {
		t.Fatalf("Unstuff(Stuff(x)) = %s, want %s", back, in)
	}
}

func TestStuffShortInputs(t *testing.T) {
	for _, literal := range []string{"", "0", "00000", "0000000000000"} {
		in := MustParse(literal)
		if got := Stuff(in, StuffWidth); !got.Equal(in) {
			t.Errorf("Stuff(%q) = %s, expected no stuff bits inside the trailer", literal, got)
		}
		if got := Unstuff(in, StuffWidth); !got.Equal(in) {
			t.Errorf("Unstuff(%q) = %s, expected no bits dropped inside the trailer", literal, got)
		}
	}
}

func TestStuffDisabledWidth(t *testing.T) {
	in := MustParse("0000000000 0000000000")
	for _, n := range []int{0, -1} {
		if got := Stuff(in, n); !got.Equal(in) {
			t.Errorf("Stuff(n=%d) changed the input: %s", n, got)
		}
		if got := Unstuff(in, n); !got.Equal(in) {
			t.Errorf("Unstuff(n=%d) changed the input: %s", n, got)
		}
	}
}

func TestStuffDoesNotAliasInput(t *testing.T) {
	in := MustParse("0101")
	out := Stuff(in, StuffWidth)
	out[0] = true
	if in[0] {
		t.Fatalf("Stuff returned a sequence sharing storage with its input")
	}
}

func TestStuffRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 2000; iter++ {
		n := 3 + rng.Intn(4)
		in := make(Bits, rng.Intn(120))
		for i := range in {
			// Bias toward dominant bits so long runs are common.
			in[i] = rng.Intn(4) == 0
		}

		stuffed := Stuff(in, n)
		if back := Unstuff(stuffed, n); !back.Equal(in) {
			t.Fatalf("n=%d: Unstuff(Stuff(%s)) = %s", n, in, back)
		}
		if run := stuffed.LongestRun(0, len(stuffed)-TrailerLength); run > n {
			t.Fatalf("n=%d: stuffed %s has a run of %d outside the trailer", n, stuffed, run)
		}
	}
}
