/*
NAME
  session_test.go

DESCRIPTION
  session_test.go exercises the full transmitter/receiver state machine
  end-to-end over an in-memory device.loopback.Pair: the happy path, a
  receiver that advertises unsupported capabilities, and a transmitter
  whose peer never answers.

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
	"bytes"
	"testing"
	"time"

	"github.com/ausocean/pbcp/afsk"
	"github.com/ausocean/pbcp/config"
	"github.com/ausocean/pbcp/device"
	"github.com/ausocean/pbcp/device/loopback"
	"github.com/ausocean/utils/logging"
)

// windowSize is generous relative to the short test messages this file
// sends: a single ReadPCM call must capture an entire encoded frame, or
// the loopback channel's fixed-size copy truncates it.
const windowSize = 1 << 16

func newLinks(t *testing.T, cfg config.Config) (*Link, *Link) {
	t.Helper()
	pair := loopback.NewPair(windowSize)

	encA, err := afsk.NewEncoder(cfg.AFSK())
	if err != nil {
		t.Fatalf("NewEncoder (A): %v", err)
	}
	decA, err := afsk.NewDecoder(cfg.AFSK())
	if err != nil {
		t.Fatalf("NewDecoder (A): %v", err)
	}
	encB, err := afsk.NewEncoder(cfg.AFSK())
	if err != nil {
		t.Fatalf("NewEncoder (B): %v", err)
	}
	decB, err := afsk.NewDecoder(cfg.AFSK())
	if err != nil {
		t.Fatalf("NewDecoder (B): %v", err)
	}

	return NewLink(pair.A(), encA, decA, windowSize), NewLink(pair.B(), encB, decB, windowSize)
}

// deafDevice simulates a transmitter whose output device is live (writes
// always succeed, as queuing to real hardware does) but whose peer never
// answers: reads block forever. It exercises the transmitter's handshake
// timeout without requiring a receiver goroutine to drain every SYNC
// retransmission.
type deafDevice struct{ block chan struct{} }

func newDeafDevice() *deafDevice { return &deafDevice{block: make(chan struct{})} }

func (d *deafDevice) WritePCM(buf []float32) error { return nil }
func (d *deafDevice) ReadPCM(buf []float32) (int, error) {
	<-d.block
	return 0, nil
}

var _ device.PCM = (*deafDevice)(nil)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{
		SyncRetryInterval: 20 * time.Millisecond,
		SyncMaxRetries:    5,
		InterPacketDelay:  time.Millisecond,
	}
	if err := cfg.Validate(); err != nil {
		t.Logf("defaulted fields: %v", err)
	}
	return cfg
}

func TestHappyPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReceiverID = 42
	cfg.Capabilities = 0x00

	txLink, rxLink := newLinks(t, cfg)
	l := (*logging.TestLogger)(t)

	tx := NewTransmitter(txLink, cfg, l)
	rx := NewReceiver(rxLink, cfg, l)

	message := []byte("Hello, World!")

	type txResult struct{ err error }
	type rxResult struct {
		msg []byte
		err error
	}
	txDone := make(chan txResult, 1)
	rxDone := make(chan rxResult, 1)

	go func() { txDone <- txResult{tx.Run(message)} }()
	go func() { msg, err := rx.Run(); rxDone <- rxResult{msg, err} }()

	select {
	case r := <-txDone:
		if r.err != nil {
			t.Fatalf("Transmitter.Run() = %v, want nil", r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("transmitter did not finish")
	}

	select {
	case r := <-rxDone:
		if r.err != nil {
			t.Fatalf("Receiver.Run() = %v, want nil", r.err)
		}
		if !bytes.Equal(r.msg, message) {
			t.Errorf("Receiver.Run() = %q, want %q", r.msg, message)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("receiver did not finish")
	}

	if tx.State() != StateClosed {
		t.Errorf("transmitter state = %s, want CLOSED", tx.State())
	}
	if rx.State() != StateClosed {
		t.Errorf("receiver state = %s, want CLOSED", rx.State())
	}
}

func TestInvalidCapabilities(t *testing.T) {
	cfg := testConfig(t)
	cfg.Capabilities = 0x01 // Unsupported: the transmitter only accepts 0x00.

	txLink, rxLink := newLinks(t, cfg)
	l := (*logging.TestLogger)(t)

	tx := NewTransmitter(txLink, cfg, l)
	rx := NewReceiver(rxLink, cfg, l)

	txErr := make(chan error, 1)
	rxErr := make(chan error, 1)

	go func() { txErr <- tx.Run([]byte("irrelevant")) }()
	go func() { _, err := rx.Run(); rxErr <- err }()

	select {
	case err := <-txErr:
		if _, ok := err.(*ProtocolError); !ok {
			t.Fatalf("Transmitter.Run() = %v, want *ProtocolError", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("transmitter did not finish")
	}

	select {
	case err := <-rxErr:
		if _, ok := err.(*ProtocolError); !ok {
			t.Fatalf("Receiver.Run() = %v, want *ProtocolError", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("receiver did not finish")
	}

	if tx.State() != StateFailed {
		t.Errorf("transmitter state = %s, want FAILED", tx.State())
	}
	if rx.State() != StateFailed {
		t.Errorf("receiver state = %s, want FAILED", rx.State())
	}
}

func TestHandshakeFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.SyncMaxRetries = 3
	cfg.SyncRetryInterval = 10 * time.Millisecond

	enc, err := afsk.NewEncoder(cfg.AFSK())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	dec, err := afsk.NewDecoder(cfg.AFSK())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	link := NewLink(newDeafDevice(), enc, dec, windowSize)
	tx := NewTransmitter(link, cfg, (*logging.TestLogger)(t))

	done := make(chan error, 1)
	go func() { done <- tx.Run([]byte("hello")) }()

	select {
	case err := <-done:
		he, ok := err.(*HandshakeError)
		if !ok {
			t.Fatalf("Transmitter.Run() = %v, want *HandshakeError", err)
		}
		if he.Retries != cfg.SyncMaxRetries {
			t.Errorf("HandshakeError.Retries = %d, want %d", he.Retries, cfg.SyncMaxRetries)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("transmitter did not give up on an absent receiver")
	}

	if tx.State() != StateFailed {
		t.Errorf("transmitter state = %s, want FAILED", tx.State())
	}
}
