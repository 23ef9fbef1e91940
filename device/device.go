/*
DESCRIPTION
  device.go provides PCM, an interface describing a duplex blocking audio
  device from which float PCM samples may be read and to which they may be
  written.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides the duplex PCM interface the session package
// drives, and two implementations: loopback (an in-process test harness)
// and alsa (a real ALSA-backed capture/playback device).
package device

import "fmt"

// PCM describes a blocking, duplex, mono float32 PCM audio channel at a
// fixed sample rate. It is the boundary the spec this package implements
// calls the audio I/O adapter: the session and modem packages depend only
// on this interface, never on a concrete audio backend, so a real
// microphone/speaker pair and an in-memory loopback harness are
// interchangeable for testing.
//
// Implementations are not required to be safe for concurrent use from
// more than one reader or more than one writer; a session owns one PCM at
// a time.
type PCM interface {
	// ReadPCM blocks until at least one sample is available, filling buf
	// and returning the count actually read. It returns a non-nil error
	// (n may be 0 or negative is never valid; callers treat err != nil as
	// the only failure signal) if the device failed.
	ReadPCM(buf []float32) (n int, err error)

	// WritePCM blocks until exactly len(buf) samples have been written, or
	// returns an error.
	WritePCM(buf []float32) error
}

// MultiError aggregates non-fatal configuration errors into a single
// error. No device in this module currently returns one.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}
