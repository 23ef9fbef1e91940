/*
NAME
  config.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for a PBCP session,
// covering both the afsk modem tone/timing parameters and the session
// state machine's handshake and transfer knobs.
package config

import (
	"time"

	"github.com/ausocean/pbcp/afsk"
)

// Defaults, named after the spec this session implements. Two different
// default sample rates appeared in the reference this protocol is based
// on (48000 in its loopback test, 44100 in its CLI tools); this
// implementation settles on 48000 for both and requires both peers to
// agree, since mismatched rates produce mismatched Goertzel coefficients
// and will not interoperate.
const (
	DefaultSampleRate = 48000.0
	DefaultBaud       = 1200.0
	DefaultFMark      = 1200.0
	DefaultFSpace     = 2200.0
	DefaultAmplitude  = 0.8

	DefaultSyncRetryInterval = 500 * time.Millisecond
	DefaultSyncMaxRetries    = 10
	DefaultInterPacketDelay  = 200 * time.Millisecond
	DefaultMaxDataPacket     = 1024
	DefaultMessageBufferCap  = 8192

	DefaultFirmwareMajor = 1
	DefaultFirmwareMinor = 0
	DefaultCapabilities  = 0x00
)

// Config provides the parameters relevant to a PBCP session, on both the
// transmitter and receiver side. A new Config must have Validate called on
// it before use; Validate fills in defaults for zero-valued fields and
// reports them as a non-fatal MultiError.
type Config struct {
	// Modem tone/timing parameters, shared verbatim with the afsk package.
	SampleRate float64
	Baud       float64
	FMark      float64
	FSpace     float64
	Amplitude  float64

	// HardDecisions selects whether the decoder emits soft metrics
	// alongside its bit decisions.
	HardDecisions bool

	// SyncRetryInterval is how long the transmitter waits for an ACK
	// after sending SYNC before retransmitting.
	SyncRetryInterval time.Duration

	// SyncMaxRetries is how many SYNC attempts the transmitter makes
	// before giving up and failing the session.
	SyncMaxRetries int

	// InterPacketDelay is the pause the transmitter takes between DATA
	// packets.
	InterPacketDelay time.Duration

	// MaxDataPacket caps the payload size of a single outgoing DATA
	// packet; larger messages are split across multiple packets.
	MaxDataPacket int

	// MessageBufferCap caps how many bytes the receiver will accumulate
	// across DATA packets before rejecting further payload with
	// ErrMessageBufferFull.
	MessageBufferCap int

	// ReceiverID, FirmwareMajor, FirmwareMinor, and Capabilities are the
	// fields the receiver reports in its INFO packet.
	ReceiverID    uint32
	FirmwareMajor uint8
	FirmwareMinor uint8
	Capabilities  uint8
}

// AFSK returns the afsk.Config implied by c's modem fields.
func (c Config) AFSK() afsk.Config {
	return afsk.Config{
		SampleRate:    c.SampleRate,
		Baud:          c.Baud,
		FMark:         c.FMark,
		FSpace:        c.FSpace,
		Amplitude:     c.Amplitude,
		HardDecisions: c.HardDecisions,
	}
}

// MultiError aggregates the non-fatal defaults Validate applied.
type MultiError []error

func (me MultiError) Error() string {
	s := "config: invalid fields defaulted:"
	for _, e := range me {
		s += " " + e.Error() + ";"
	}
	return s
}

// Validate fills zero-valued fields with their defaults and returns a
// MultiError describing which fields were defaulted, or nil if every field
// was already set. Validate never returns a fatal error: a Config can
// always be made usable. Modem parameters that are explicitly negative are
// also defaulted rather than left to fail later inside afsk.NewEncoder.
// FirmwareMajor and FirmwareMinor, when both zero, are defaulted without
// being reported in the MultiError.
func (c *Config) Validate() error {
	var errs MultiError

	if c.SampleRate <= 0 {
		errs = append(errs, errDefaulted("SampleRate"))
		c.SampleRate = DefaultSampleRate
	}
	if c.Baud <= 0 {
		errs = append(errs, errDefaulted("Baud"))
		c.Baud = DefaultBaud
	}
	if c.FMark <= 0 {
		errs = append(errs, errDefaulted("FMark"))
		c.FMark = DefaultFMark
	}
	if c.FSpace <= 0 {
		errs = append(errs, errDefaulted("FSpace"))
		c.FSpace = DefaultFSpace
	}
	if c.Amplitude == 0 {
		errs = append(errs, errDefaulted("Amplitude"))
		c.Amplitude = DefaultAmplitude
	}
	if c.SyncRetryInterval <= 0 {
		errs = append(errs, errDefaulted("SyncRetryInterval"))
		c.SyncRetryInterval = DefaultSyncRetryInterval
	}
	if c.SyncMaxRetries <= 0 {
		errs = append(errs, errDefaulted("SyncMaxRetries"))
		c.SyncMaxRetries = DefaultSyncMaxRetries
	}
	if c.InterPacketDelay <= 0 {
		errs = append(errs, errDefaulted("InterPacketDelay"))
		c.InterPacketDelay = DefaultInterPacketDelay
	}
	if c.MaxDataPacket <= 0 {
		errs = append(errs, errDefaulted("MaxDataPacket"))
		c.MaxDataPacket = DefaultMaxDataPacket
	}
	if c.MessageBufferCap <= 0 {
		errs = append(errs, errDefaulted("MessageBufferCap"))
		c.MessageBufferCap = DefaultMessageBufferCap
	}
	if c.FirmwareMajor == 0 && c.FirmwareMinor == 0 {
		c.FirmwareMajor = DefaultFirmwareMajor
		c.FirmwareMinor = DefaultFirmwareMinor
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}

type fieldDefaultedError string

func (e fieldDefaultedError) Error() string { return "invalid " + string(e) + ", defaulted" }

func errDefaulted(field string) error { return fieldDefaultedError(field) }
