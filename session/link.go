/*
NAME
  link.go

DESCRIPTION
  link.go implements the session framing described by the spec this
  protocol implements: packing a header and payload into bytes, expanding
  to LSB-first bits, encoding to PCM and handing it to a device.PCM on
  send; the inverse on receive.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/pbcp/afsk"
	"github.com/ausocean/pbcp/device"
	"github.com/ausocean/pbcp/pbcp"
)

// ErrRecvTimeout is returned by Link.RecvTimeout when no frame arrived
// within the requested duration. It is the mechanism the transmitter's
// handshake uses to bound its per-attempt wait for an ACK (spec.md §4.5);
// nothing else in this package times out this way, since everything past
// the handshake waits indefinitely by design (spec.md §5).
var ErrRecvTimeout = errors.New("session: receive timed out")

// Link binds one afsk.Encoder and one afsk.Decoder (owned exclusively by
// this Link, per the spec's ownership rules) to a device.PCM, and packs
// and unpacks PBCP frames across it.
type Link struct {
	pcm device.PCM
	enc *afsk.Encoder
	dec *afsk.Decoder

	window []float32 // Scratch buffer for one ReadPCM call.

	startOnce sync.Once
	recvCh    chan recvResult
}

type recvResult struct {
	hdr     pbcp.Header
	payload []byte
	err     error
}

// NewLink returns a Link ready to send and receive over pcm using enc/dec.
// windowSize is the number of PCM samples read per Recv call; the
// reference this is modelled on uses chunk sizes between 256 and 48000.
func NewLink(pcm device.PCM, enc *afsk.Encoder, dec *afsk.Decoder, windowSize int) *Link {
	return &Link{pcm: pcm, enc: enc, dec: dec, window: make([]float32, windowSize)}
}

// startReader lazily launches the single goroutine that owns all reads
// from pcm and all decoding, so Recv and RecvTimeout never race on the
// decoder or scratch window.
func (l *Link) startReader() {
	l.startOnce.Do(func() {
		l.recvCh = make(chan recvResult, 1)
		go func() {
			for {
				n, err := l.pcm.ReadPCM(l.window)
				if err != nil {
					l.recvCh <- recvResult{err: err}
					continue
				}
				bits, _ := l.dec.DecodeBits(l.window[:n], nil, nil)
				frame := pbcp.BitsToBytes(bits)
				hdr, payload, err := pbcp.Decode(frame)
				l.recvCh <- recvResult{hdr: hdr, payload: payload, err: err}
			}
		}()
	})
}

// Send packs hdr and payload, encodes them to PCM, and writes them out.
func (l *Link) Send(hdr pbcp.Header, payload []byte) error {
	frame := pbcp.Encode(hdr, payload)
	bits := pbcp.BytesToBits(frame)

	// Size the scratch PCM buffer generously: worst case every symbol
	// takes one more sample than nominal.
	perSymbol := int(math.Ceil(l.enc.SamplesPerSymbol())) + 1
	pcm := make([]float32, len(bits)*perSymbol)

	n, err := l.enc.EncodeBits(bits, pcm)
	if err != nil {
		return err
	}
	return l.pcm.WritePCM(pcm[:n])
}

// Recv blocks until one window of PCM has been read and decoded as a
// single PBCP frame. A window that doesn't begin near a symbol boundary,
// or that doesn't contain a recognizable header, yields ErrBadHeader or
// ErrShortFrame — both are treated by the session layer as "nothing
// useful arrived this attempt", not a fatal condition.
func (l *Link) Recv() (pbcp.Header, []byte, error) {
	l.startReader()
	r := <-l.recvCh
	return r.hdr, r.payload, r.err
}

// RecvTimeout behaves like Recv but gives up after d, returning
// ErrRecvTimeout. It is how the transmitter bounds each SYNC attempt's
// wait for an ACK without tearing down or restarting the reader
// goroutine between attempts.
func (l *Link) RecvTimeout(d time.Duration) (pbcp.Header, []byte, error) {
	l.startReader()
	select {
	case r := <-l.recvCh:
		return r.hdr, r.payload, r.err
	case <-time.After(d):
		return pbcp.Header{}, nil, ErrRecvTimeout
	}
}

// ResetDecoder re-synchronizes the decoder's resonators and in-symbol
// counter, per the spec's instruction that callers re-establish sync this
// way after a prolonged gap with no recognizable packet.
func (l *Link) ResetDecoder() { l.dec.Reset() }
