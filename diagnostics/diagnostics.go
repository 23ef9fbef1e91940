/*
NAME
  diagnostics.go

DESCRIPTION
  diagnostics.go provides bit-error-rate scoring and spectral analysis
  used by the loopback self-test tool to characterize a captured run.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package diagnostics scores a completed or attempted transfer: the bit
// error rate between what was sent and what was decoded, and the
// spectral peak/floor ratio of a captured PCM run.
package diagnostics

import (
	"fmt"
	"math"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/stat"
)

// BitErrorRate returns the fraction of bits in sent and received that
// differ, expanding both to LSB-first bits before comparing. It panics
// if sent and received differ in byte length, since a byte-length
// mismatch means they are not comparable bit streams.
func BitErrorRate(sent, received []byte) float64 {
	if len(sent) != len(received) {
		panic(fmt.Sprintf("diagnostics: length mismatch, sent %d bytes, received %d bytes", len(sent), len(received)))
	}
	if len(sent) == 0 {
		return 0
	}

	matches := make([]float64, 0, len(sent)*8)
	for i := range sent {
		for bit := 0; bit < 8; bit++ {
			sentBit := (sent[i] >> uint(bit)) & 1
			recvBit := (received[i] >> uint(bit)) & 1
			if sentBit == recvBit {
				matches = append(matches, 0)
			} else {
				matches = append(matches, 1)
			}
		}
	}
	return stat.Mean(matches, nil)
}

// SpectralSplatter returns the peak power and the median (noise floor)
// power of pcm's magnitude spectrum, in that order, after a flat-top
// window is applied. A transmitter confined to its mark/space tones
// shows a large ratio between the two; a transmitter driving the wrong
// amplitude or clipping shows a much smaller one.
func SpectralSplatter(pcm []float32) (peak, floor float64, err error) {
	if len(pcm) == 0 {
		return 0, 0, fmt.Errorf("diagnostics: no samples to analyze")
	}

	windowed := make([]float64, len(pcm))
	win := window.FlatTop(len(pcm))
	for i, s := range pcm {
		windowed[i] = float64(s) * win[i]
	}

	spectrum := fft.FFTReal(windowed)
	mags := make([]float64, len(spectrum)/2)
	for i := range mags {
		mags[i] = math.Hypot(real(spectrum[i]), imag(spectrum[i]))
	}

	peak = mags[0]
	for _, m := range mags {
		if m > peak {
			peak = m
		}
	}

	sorted := append([]float64(nil), mags...)
	sort.Float64s(sorted)
	floor = sorted[len(sorted)/2]

	return peak, floor, nil
}
