/*
NAME
  afsk_test.go

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package afsk

import (
	"math"
	"math/rand"
	"testing"
)

func testConfig() Config {
	return Config{
		SampleRate:    48000,
		Baud:          1200,
		FMark:         1200,
		FSpace:        2200,
		Amplitude:     0.8,
		HardDecisions: true,
	}
}

func TestNewEncoderBadArg(t *testing.T) {
	for _, cfg := range []Config{
		{SampleRate: 0, Baud: 1200, FMark: 1200, FSpace: 2200},
		{SampleRate: 48000, Baud: 0, FMark: 1200, FSpace: 2200},
		{SampleRate: 48000, Baud: 1200, FMark: 0, FSpace: 2200},
		{SampleRate: 48000, Baud: 1200, FMark: 1200, FSpace: 0},
		{SampleRate: -1, Baud: 1200, FMark: 1200, FSpace: 2200},
	} {
		if _, err := NewEncoder(cfg); err != ErrBadArg {
			t.Errorf("NewEncoder(%+v) = _, %v, want ErrBadArg", cfg, err)
		}
		if _, err := NewDecoder(cfg); err != ErrBadArg {
			t.Errorf("NewDecoder(%+v) = _, %v, want ErrBadArg", cfg, err)
		}
	}
}

func TestAmplitudeClamp(t *testing.T) {
	cfg := testConfig()
	cfg.Amplitude = 5
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]float32, int(enc.SamplesPerSymbol())+1)
	_, err = enc.EncodeBits([]byte{1}, out)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range out {
		if math.Abs(float64(s)) > 1.0+1e-9 {
			t.Fatalf("sample %v exceeds clamped amplitude", s)
		}
	}
}

// TestSampleCount checks that encoding n bits produces a sample count within
// 1 of round(n*Fs/baud), as required for any config with baud <= Fs/4.
func TestSampleCount(t *testing.T) {
	cfg := testConfig()
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	const nbits = 1000
	bits := make([]byte, nbits)
	r := rand.New(rand.NewSource(1))
	for i := range bits {
		bits[i] = byte(r.Intn(2))
	}

	out := make([]float32, nbits*int(cfg.SampleRate/cfg.Baud)+100)
	n, err := enc.EncodeBits(bits, out)
	if err != nil {
		t.Fatal(err)
	}

	want := math.Round(nbits * cfg.SampleRate / cfg.Baud)
	if math.Abs(float64(n)-want) > 1 {
		t.Errorf("got %d samples, want within 1 of %v", n, want)
	}
}

// TestShortBufferRejected verifies the §4.1 resolution of the encoder's
// open question: a buffer that can't hold one full symbol is rejected up
// front rather than silently truncated.
func TestShortBufferRejected(t *testing.T) {
	cfg := testConfig()
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	nominal := int(math.Round(enc.SamplesPerSymbol()))
	out := make([]float32, nominal-1)
	before := enc.phase
	n, err := enc.EncodeBits([]byte{1, 0, 1}, out)
	if err != ErrShortBuffer {
		t.Fatalf("EncodeBits with short buffer: got err=%v, want ErrShortBuffer", err)
	}
	if n != 0 {
		t.Errorf("got n=%d, want 0 (no partial symbol written)", n)
	}
	if enc.phase != before {
		t.Errorf("encoder phase mutated despite rejected call: %v != %v", enc.phase, before)
	}
}

// TestPhaseContinuity checks that the concatenated PCM across many
// EncodeBits calls has no step discontinuity bigger than amplitude times
// the largest phase increment in use.
func TestPhaseContinuity(t *testing.T) {
	cfg := testConfig()
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	maxInc := math.Max(enc.incMark, enc.incSpace)
	maxStep := cfg.Amplitude * maxInc * 1.05 // small safety margin for rounding.

	var all []float32
	r := rand.New(rand.NewSource(2))
	for call := 0; call < 50; call++ {
		bits := make([]byte, 1+r.Intn(5))
		for i := range bits {
			bits[i] = byte(r.Intn(2))
		}
		out := make([]float32, len(bits)*100)
		n, err := enc.EncodeBits(bits, out)
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, out[:n]...)
	}

	for i := 1; i < len(all); i++ {
		step := math.Abs(float64(all[i] - all[i-1]))
		if step > maxStep {
			t.Fatalf("sample %d: step %v exceeds bound %v", i, step, maxStep)
		}
	}
}

// TestLoopbackBitErrorRate is the noise-free modem loopback scenario from
// spec.md §8: bit-error rate must be <= 0.5% over >= 5 seconds of random
// bits at 48kHz/1200 baud.
func TestLoopbackBitErrorRate(t *testing.T) {
	cfg := testConfig()
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	nbits := int(5 * cfg.Baud) // >= 5 seconds worth of symbols.
	if nbits < 6000 {
		nbits = 6000
	}
	bits := make([]byte, nbits)
	r := rand.New(rand.NewSource(3))
	for i := range bits {
		bits[i] = byte(r.Intn(2))
	}

	pcm := make([]float32, nbits*int(cfg.SampleRate/cfg.Baud)+1000)
	n, err := enc.EncodeBits(bits, pcm)
	if err != nil {
		t.Fatal(err)
	}

	got, _ := dec.DecodeBits(pcm[:n], nil, nil)
	if len(got) < nbits {
		t.Fatalf("decoded %d bits, want at least %d", len(got), nbits)
	}

	var errs int
	for i, b := range bits {
		if got[i] != b {
			errs++
		}
	}
	ber := float64(errs) / float64(nbits)
	if ber > 0.005 {
		t.Errorf("bit error rate %.5f exceeds 0.005", ber)
	}
}

// TestDriftCompensation checks that over many symbols the average emitted
// symbol length converges to the exact Fs/baud within +/-0.01 sample, for a
// config where Fs/baud is not an integer.
func TestDriftCompensation(t *testing.T) {
	cfg := Config{SampleRate: 44100, Baud: 1200, FMark: 1200, FSpace: 2200, Amplitude: 0.8, HardDecisions: true}
	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	const nbits = 2000
	bits := make([]byte, nbits)
	r := rand.New(rand.NewSource(4))
	for i := range bits {
		bits[i] = byte(r.Intn(2))
	}
	pcm := make([]float32, nbits*200)
	n, err := enc.EncodeBits(bits, pcm)
	if err != nil {
		t.Fatal(err)
	}

	// Track symbol boundaries by re-implementing the decoder's bookkeeping
	// inline would duplicate it; instead assert on total samples consumed
	// per bit decoded, which is what drift compensation is protecting.
	got, _ := dec.DecodeBits(pcm[:n], nil, nil)
	if len(got) == 0 {
		t.Fatal("no bits decoded")
	}
	avg := float64(n) / float64(len(got))
	want := cfg.SampleRate / cfg.Baud
	if math.Abs(avg-want) > 0.01 {
		t.Errorf("average samples/symbol %.4f, want within 0.01 of %.4f", avg, want)
	}
}

func TestDecoderResetPreservesConfig(t *testing.T) {
	cfg := testConfig()
	dec, err := NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	dec.mark.s1 = 1.23
	dec.idxInSymbol = 2
	carryBefore := dec.fracCarry
	dec.Reset()
	if dec.mark.s1 != 0 || dec.idxInSymbol != 0 {
		t.Error("Reset did not zero resonator state / symbol index")
	}
	if dec.fracCarry != carryBefore {
		t.Error("Reset must not touch fracCarry")
	}
}
