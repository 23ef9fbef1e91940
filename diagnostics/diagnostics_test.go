/*
DESCRIPTION
  diagnostics_test.go tests bit error rate scoring and spectral analysis.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package diagnostics

import (
	"math"
	"testing"
)

func TestBitErrorRateIdentical(t *testing.T) {
	data := []byte("identical payload")
	if ber := BitErrorRate(data, data); ber != 0 {
		t.Errorf("BitErrorRate(x, x) = %v, want 0", ber)
	}
}

func TestBitErrorRateAllFlipped(t *testing.T) {
	sent := []byte{0x00, 0xFF}
	received := []byte{0xFF, 0x00}
	if ber := BitErrorRate(sent, received); ber != 1 {
		t.Errorf("BitErrorRate(fully flipped) = %v, want 1", ber)
	}
}

func TestBitErrorRatePartial(t *testing.T) {
	sent := []byte{0x00}
	received := []byte{0x01} // One bit differs out of 8.
	want := 1.0 / 8.0
	if ber := BitErrorRate(sent, received); math.Abs(ber-want) > 1e-9 {
		t.Errorf("BitErrorRate(one flipped bit) = %v, want %v", ber, want)
	}
}

func TestBitErrorRateLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("BitErrorRate with mismatched lengths did not panic")
		}
	}()
	BitErrorRate([]byte{0x00}, []byte{0x00, 0x01})
}

func TestSpectralSplatterPeakAboveFloor(t *testing.T) {
	const n = 1024
	const fs = 48000.0
	const tone = 1200.0

	pcm := make([]float32, n)
	for i := range pcm {
		pcm[i] = float32(math.Sin(2 * math.Pi * tone * float64(i) / fs))
	}

	peak, floor, err := SpectralSplatter(pcm)
	if err != nil {
		t.Fatalf("SpectralSplatter: %v", err)
	}
	if peak <= floor {
		t.Errorf("SpectralSplatter: peak %v should exceed noise floor %v for a pure tone", peak, floor)
	}
}

func TestSpectralSplatterEmpty(t *testing.T) {
	if _, _, err := SpectralSplatter(nil); err == nil {
		t.Error("SpectralSplatter(nil) = nil error, want non-nil")
	}
}
