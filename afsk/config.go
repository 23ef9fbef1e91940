/*
NAME
  config.go

DESCRIPTION
  config.go defines the immutable tone/timing configuration shared by the
  AFSK encoder and decoder.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package afsk implements a continuous-phase, two-tone audio frequency-shift
// keying modem: a phase-continuous encoder that turns bits into PCM float
// samples, and a Goertzel-based symbol-synchronous decoder that turns PCM
// float samples back into bits.
package afsk

import (
	"github.com/pkg/errors"
)

// minSymbolSamples is the floor applied to the decoder's symbol window;
// below this the Goertzel resonator doesn't have enough samples to resolve
// mark from space. The encoder's rounded samples-per-symbol is not floored.
const minSymbolSamples = 4

// Config is the immutable, per-session tone and timing configuration used by
// both Encoder and Decoder. Both ends of a link must agree on every field;
// there is no in-band negotiation of it, and nothing checks it: the
// session-level config.Config.Validate only fills in defaults.
type Config struct {
	SampleRate float64 // Fs, in Hz.
	Baud       float64 // Symbol rate, in symbols/s (== bits/s, binary FSK).
	FMark      float64 // Tone frequency representing bit 1, in Hz.
	FSpace     float64 // Tone frequency representing bit 0, in Hz.

	// Amplitude is clamped to [-1, 1] by NewEncoder; it has no effect on the
	// decoder.
	Amplitude float64

	// HardDecisions selects whether the decoder emits only hard bit
	// decisions (true) or also a signed soft metric per bit (false).
	HardDecisions bool
}

var (
	// ErrBadArg is returned when a Config's sample rate, baud, or tone
	// frequencies aren't strictly positive.
	ErrBadArg = errors.New("afsk: sample rate, baud and tone frequencies must be positive")
)

func (c Config) validate() error {
	if c.SampleRate <= 0 || c.Baud <= 0 || c.FMark <= 0 || c.FSpace <= 0 {
		return ErrBadArg
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
