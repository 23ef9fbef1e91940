/*
NAME
  alsa_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package alsa

import (
	"os"
	"testing"

	"github.com/ausocean/utils/logging"
)

// TestDeviceOpen opens the default capture/playback devices and reads one
// chunk. Real recording hardware is not available in most test
// environments, so a failure to open is a skip, not a failure.
func TestDeviceOpen(t *testing.T) {
	l := logging.New(logging.Debug, os.Stderr, true)
	d := New(l)

	if err := d.Open(48000); err != nil {
		t.Skipf("no ALSA device available: %v", err)
	}
	defer d.Close()

	buf := make([]float32, captureChunk)
	if _, err := d.ReadPCM(buf); err != nil {
		t.Errorf("ReadPCM: %v", err)
	}
}

func TestSampleConversionRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 16000, -16000}
	f := int16ToFloat32(in)
	back := float32ToInt16(f)
	for i := range in {
		diff := int(in[i]) - int(back[i])
		if diff < -1 || diff > 1 {
			t.Errorf("sample %d: %d -> %v -> %d, drifted more than rounding error", i, in[i], f[i], back[i])
		}
	}
}

func TestByteConversionRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 12345, -12345}
	got := bytesToInt16(int16ToBytes(in))
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], in[i])
		}
	}
}

func TestClampOnOverrange(t *testing.T) {
	out := float32ToInt16([]float32{2, -2})
	if out[0] != 32767 || out[1] != -32767 {
		t.Errorf("got %v, want clamped to full scale", out)
	}
}
