/*
NAME
  loopback.go

DESCRIPTION
  loopback.go implements an in-memory duplex PCM channel used only by the
  in-process self-test harness: two device.PCM endpoints connected by a
  float buffer (reallocated when a larger frame is written), a sample
  count, a ready flag, and a condition variable.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package loopback provides an in-memory device.PCM pair for end-to-end
// tests, without any real audio hardware.
package loopback

import "sync"

// channel is one direction's shared buffer: a single pending PCM frame,
// guarded by a mutex and signalled with a condition variable. This is the
// only concurrency primitive the core protocol needs (the session state
// machine itself is single-threaded and blocking on each side).
type channel struct {
	mu    sync.Mutex
	cond  *sync.Cond
	buf   []float32
	n     int
	ready bool
}

func newChannel(capacity int) *channel {
	c := &channel{buf: make([]float32, capacity)}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// write copies pcm into the channel, marks it ready, and wakes one reader.
// It blocks if a previous frame hasn't been consumed yet, so writers never
// overwrite a pending frame (the reference harness this is modelled on is a
// single-slot handoff, not a ring buffer).
func (c *channel) write(pcm []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.ready {
		c.cond.Wait()
	}
	if len(pcm) > len(c.buf) {
		c.buf = make([]float32, len(pcm))
	}
	n := copy(c.buf, pcm)
	c.n = n
	c.ready = true
	c.cond.Signal()
	return nil
}

// read blocks until a frame is ready, consumes it, and clears the flag.
func (c *channel) read(out []float32) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.ready {
		c.cond.Wait()
	}
	n := copy(out, c.buf[:c.n])
	c.ready = false
	c.cond.Signal()
	return n, nil
}

// Pair is two device.PCM endpoints, A and B, connected so that whatever A
// writes, B reads, and vice versa.
type Pair struct {
	aToB *channel
	bToA *channel
}

// NewPair returns a connected Pair. capacity is the initial size of each
// direction's buffer; a write of a larger frame reallocates it to fit.
func NewPair(capacity int) *Pair {
	return &Pair{
		aToB: newChannel(capacity),
		bToA: newChannel(capacity),
	}
}

// A returns the endpoint that writes to aToB and reads from bToA.
func (p *Pair) A() *Endpoint { return &Endpoint{write: p.aToB, read: p.bToA} }

// B returns the endpoint that writes to bToA and reads from aToB.
func (p *Pair) B() *Endpoint { return &Endpoint{write: p.bToA, read: p.aToB} }

// Endpoint implements device.PCM over one direction of a Pair.
type Endpoint struct {
	write *channel
	read  *channel
}

// WritePCM implements device.PCM.
func (e *Endpoint) WritePCM(buf []float32) error {
	return e.write.write(buf)
}

// ReadPCM implements device.PCM.
func (e *Endpoint) ReadPCM(buf []float32) (int, error) {
	return e.read.read(buf)
}
