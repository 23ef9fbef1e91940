/*
NAME
  encoder.go

DESCRIPTION
  encoder.go implements the AFSK encoder: a phase-continuous two-tone
  oscillator that turns a bit stream into PCM float samples.

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

	"github.com/pkg/errors"
)

// phaseWrap is the bound beyond which accumulated phase is folded back into
// [0, 2*pi) to stop the float64 from losing precision over a long session.
// The check runs after every sample, so a fold can land mid-symbol; since
// it removes a whole multiple of 2*pi, the waveform is unaffected.
const phaseWrap = 1e6

// ErrShortBuffer is returned by EncodeBits when the next symbol does not
// fit in what remains of out. The source this modem is based on instead
// wrote as many samples as fit and silently discarded the rest of the
// symbol, leaving the encoder's phase and symbol_accum state consistent
// with a symbol that was never actually emitted. EncodeBits only ever
// writes whole symbols: on ErrShortBuffer it returns the samples of the
// symbols already written, and encoder state reflects exactly those.
var ErrShortBuffer = errors.New("afsk: output buffer too small for one symbol")

// Encoder turns a stream of bits into phase-continuous PCM float samples at
// two tones. An Encoder is owned by exactly one session; it is not
// safe for concurrent use.
type Encoder struct {
	cfg Config

	phase       float64 // Current phase, radians. Never reset between calls.
	incMark     float64 // Phase increment per sample while emitting mark.
	incSpace    float64 // Phase increment per sample while emitting space.
	nominalN    float64 // Fs / baud, the exact (fractional) samples per symbol.
	symbolAccum float64 // Signed fractional carry; |symbolAccum| < 1 after each symbol.
}

// NewEncoder validates cfg and returns a ready Encoder with phase starting
// at zero. Amplitude is clamped to [-1, 1].
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Amplitude = clamp(cfg.Amplitude, -1, 1)
	return &Encoder{
		cfg:      cfg,
		incMark:  2 * math.Pi * cfg.FMark / cfg.SampleRate,
		incSpace: 2 * math.Pi * cfg.FSpace / cfg.SampleRate,
		nominalN: cfg.SampleRate / cfg.Baud,
	}, nil
}

// EncodeBits emits PCM samples for bits (one bit per symbol, LSB-first order
// is the caller's concern, not the modem's) into out, returning the number
// of samples written.
//
// Samples-per-symbol averages to Fs/baud exactly over many symbols: each
// symbol emits round(nominalN + symbolAccum) samples, and the rounding
// residual is carried into the next symbol's computation.
//
// Phase is never reset between calls; callers that want phase-continuous
// audio across packet boundaries must reuse one Encoder for the whole
// session, per the spec this modem implements.
func (e *Encoder) EncodeBits(bits []byte, out []float32) (int, error) {
	if len(bits) == 0 {
		return 0, nil
	}

	var produced int
	for _, bit := range bits {
		inc := e.incSpace
		if bit != 0 {
			inc = e.incMark
		}

		exact := e.nominalN + e.symbolAccum
		nS := int(math.Floor(exact + 0.5))
		if produced+nS > len(out) {
			// Stop before mutating any state for this symbol: it is not
			// emitted, so symbolAccum and phase reflect only the symbols
			// already written to out.
			return produced, ErrShortBuffer
		}
		e.symbolAccum = exact - float64(nS)

		for n := 0; n < nS; n++ {
			out[produced] = float32(e.cfg.Amplitude * math.Sin(e.phase))
			produced++
			e.phase += inc
			if e.phase > phaseWrap {
				e.phase = math.Mod(e.phase, 2*math.Pi)
			}
		}
	}
	return produced, nil
}

// SamplesPerSymbol returns the exact (fractional) number of samples the
// encoder emits per symbol on average, Fs/baud.
func (e *Encoder) SamplesPerSymbol() float64 { return e.nominalN }
