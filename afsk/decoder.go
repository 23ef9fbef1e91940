/*
NAME
  decoder.go

DESCRIPTION
  decoder.go implements the AFSK decoder: two Goertzel resonators tuned to
  the mark and space tones, symbol-synchronous bit decisions, and fractional
  drift compensation.

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

import "math"

// goertzel is one single-bin Goertzel resonator's running state.
type goertzel struct {
	s1, s2 float64 // Last two state samples.
	coeff  float64 // 2*cos(2*pi*f/Fs), precomputed at init.
}

func newGoertzel(freq, sampleRate float64) goertzel {
	return goertzel{coeff: 2 * math.Cos(2*math.Pi*freq/sampleRate)}
}

func (g *goertzel) step(x float64) {
	s := x + g.coeff*g.s1 - g.s2
	g.s2 = g.s1
	g.s1 = s
}

func (g *goertzel) power() float64 {
	return g.s1*g.s1 + g.s2*g.s2 - g.coeff*g.s1*g.s2
}

func (g *goertzel) reset() {
	g.s1, g.s2 = 0, 0
}

// Decoder recovers bits from PCM float samples by integrating two Goertzel
// resonators over a symbol window and comparing their power. It is
// open-loop on symbol timing: there is no preamble-based bit-timing
// recovery, so a receive window that does not begin near a symbol boundary
// will produce a shifted bit stream (see package session for how the
// protocol layer copes with that). A Decoder is owned by exactly one
// session; it is not safe for concurrent use.
type Decoder struct {
	cfg Config

	n         int     // round(Fs/baud), floored at minSymbolSamples.
	fracCarry float64 // Fs/baud - n, accumulated across symbols for drift tracking.

	mark, space goertzel

	idxInSymbol int // 0 <= idxInSymbol < nTarget.
	nTarget     int // Samples in the symbol currently being integrated.
}

// NewDecoder validates cfg and returns a ready Decoder with resonator state
// zeroed.
func NewDecoder(cfg Config) (*Decoder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	exactN := cfg.SampleRate / cfg.Baud
	n := int(math.Floor(exactN + 0.5))
	if n < minSymbolSamples {
		n = minSymbolSamples
	}
	return &Decoder{
		cfg:       cfg,
		n:         n,
		fracCarry: exactN - float64(n),
		mark:      newGoertzel(cfg.FMark, cfg.SampleRate),
		space:     newGoertzel(cfg.FSpace, cfg.SampleRate),
		nTarget:   n,
	}, nil
}

// Reset zeroes resonator state and the in-symbol sample counter without
// touching configuration or the accumulated fractional drift carry. Callers
// invoke this when upstream declares loss of sync (e.g. a long gap with no
// recognizable packet), per the protocol's timing contract: decoding never
// advances timing across such gaps on its own.
func (d *Decoder) Reset() {
	d.mark.reset()
	d.space.reset()
	d.idxInSymbol = 0
}

// DecodeBits processes pcm in order, appending one decided bit per symbol
// boundary to bits and, when cfg.HardDecisions is false and soft is
// non-nil, one signed power-difference metric per bit to soft. The slices
// grow as needed; there is no limit on how many bits one call decodes.
// It returns the slices extended with the newly decoded bits/metrics.
func (d *Decoder) DecodeBits(pcm []float32, bits []byte, soft []float64) ([]byte, []float64) {
	for _, xf := range pcm {
		x := float64(xf)
		d.mark.step(x)
		d.space.step(x)
		d.idxInSymbol++

		if d.idxInSymbol < d.nTarget {
			continue
		}

		pMark := d.mark.power()
		pSpace := d.space.power()
		metric := pMark - pSpace

		var bit byte
		if metric >= 0 {
			bit = 1
		}
		bits = append(bits, bit)
		if !d.cfg.HardDecisions && soft != nil {
			soft = append(soft, metric)
		}

		d.mark.reset()
		d.space.reset()
		d.idxInSymbol = 0
		d.advanceSymbolLength()
	}
	return bits, soft
}

// advanceSymbolLength applies one step of fractional drift compensation,
// choosing the next symbol's window length from n +/- {-1, 0, +1} so that
// the average symbol length over many symbols converges to the exact
// Fs/baud rather than the rounded integer n.
func (d *Decoder) advanceSymbolLength() {
	exactN := d.cfg.SampleRate / d.cfg.Baud
	d.fracCarry += exactN - float64(d.n)

	switch {
	case d.fracCarry >= 0.5:
		d.nTarget = d.n + 1
		d.fracCarry -= 1
	case d.fracCarry <= -0.5:
		d.nTarget = d.n - 1
		d.fracCarry += 1
	default:
		d.nTarget = d.n
	}
	if d.nTarget < minSymbolSamples {
		d.nTarget = minSymbolSamples
	}
}
