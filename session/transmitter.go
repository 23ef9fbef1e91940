/*
NAME
  transmitter.go

DESCRIPTION
  transmitter.go implements the transmitter half of the PBCP session state
  machine: SYNC retry loop, INFO validation, DATA transfer, and END/ACK
  termination.

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
	"time"

	"github.com/ausocean/pbcp/config"
	"github.com/ausocean/pbcp/pbcp"
	"github.com/ausocean/utils/logging"
)

// Transmitter drives the "T" role from the state diagram this package
// implements: IDLE -> SYNCING -> ACKED -> INFO_EXCHANGED -> TRANSFERRING
// -> CLOSING -> CLOSED, or FAILED on handshake exhaustion or an INFO with
// unsupported capabilities.
type Transmitter struct {
	link  *Link
	cfg   config.Config
	l     logging.Logger
	state State
}

// NewTransmitter returns a Transmitter ready to run.
func NewTransmitter(link *Link, cfg config.Config, l logging.Logger) *Transmitter {
	return &Transmitter{link: link, cfg: cfg, l: l, state: StateIdle}
}

// State returns the transmitter's current state.
func (t *Transmitter) State() State { return t.state }

// Run drives the session to completion, sending message as a sequence of
// DATA packets no larger than cfg.MaxDataPacket each. It returns nil on a
// clean CLOSED completion, *HandshakeError if the peer never ACKed SYNC,
// or *ProtocolError if the peer reported an error (invalid capabilities).
func (t *Transmitter) Run(message []byte) error {
	t.state = StateSyncing
	if err := t.handshake(); err != nil {
		t.state = StateFailed
		return err
	}
	t.state = StateAcked

	info, err := t.awaitInfo()
	if err != nil {
		t.state = StateFailed
		return err
	}

	if info.Capabilities != 0x00 {
		t.l.Warning("[TX] INFO reports unsupported capabilities", "capabilities", info.Capabilities)
		if sendErr := t.link.Send(pbcp.NewHeader(pbcp.TypeErr, 0), pbcp.EncodeErr(pbcp.ErrPayload{Code: pbcp.ErrInvalidCapabilities})); sendErr != nil {
			t.l.Error("[!] failed to send ERR", "error", sendErr)
		}
		t.state = StateFailed
		return &ProtocolError{Code: pbcp.ErrInvalidCapabilities}
	}
	t.state = StateInfoExchanged

	t.state = StateTransferring
	if err := t.sendMessage(message); err != nil {
		t.state = StateFailed
		return err
	}

	t.l.Info("[TX] sending END")
	if err := t.link.Send(pbcp.NewHeader(pbcp.TypeEnd, 0), nil); err != nil {
		t.state = StateFailed
		return err
	}
	t.state = StateClosing

	if err := t.awaitFinalAck(); err != nil {
		t.state = StateFailed
		return err
	}
	t.state = StateClosed
	t.l.Info("[#] transmitter finished", "state", t.state.String())
	return nil
}

// handshake sends SYNC up to cfg.SyncMaxRetries times, waiting up to
// cfg.SyncRetryInterval for an ACK after each attempt.
func (t *Transmitter) handshake() error {
	sync := pbcp.NewHeader(pbcp.TypeSync, 0)
	for attempt := 1; attempt <= t.cfg.SyncMaxRetries; attempt++ {
		if err := t.link.Send(sync, nil); err != nil {
			return err
		}
		t.l.Info("[TX] sent SYNC", "attempt", attempt)

		deadline := time.Now().Add(t.cfg.SyncRetryInterval)
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				break
			}
			hdr, _, err := t.link.RecvTimeout(remaining)
			if err == ErrRecvTimeout {
				break
			}
			if err != nil {
				continue
			}
			if hdr.Type == pbcp.TypeAck {
				t.l.Info("[TX] received ACK")
				return nil
			}
			// Anything else (including NACK, which is defined but never
			// acted on) is ignored; the transmitter keeps waiting within
			// this attempt's deadline.
		}
	}
	t.l.Error("[!] Failed to handshake")
	return &HandshakeError{Retries: t.cfg.SyncMaxRetries}
}

// awaitInfo waits indefinitely for the receiver's INFO packet, ignoring
// anything else that arrives first (e.g. a stray retransmitted ACK).
func (t *Transmitter) awaitInfo() (pbcp.InfoPayload, error) {
	for {
		hdr, payload, err := t.link.Recv()
		if err != nil {
			continue
		}
		if hdr.Type != pbcp.TypeInfo {
			continue
		}
		info, err := pbcp.DecodeInfo(payload)
		if err != nil {
			continue
		}
		t.l.Info("[TX] received INFO", "receiverID", info.ReceiverID, "capabilities", info.Capabilities)
		return info, nil
	}
}

// sendMessage splits message into cfg.MaxDataPacket-sized DATA packets,
// pausing cfg.InterPacketDelay between each.
func (t *Transmitter) sendMessage(message []byte) error {
	if len(message) == 0 {
		return nil
	}
	for offset := 0; offset < len(message); offset += t.cfg.MaxDataPacket {
		end := offset + t.cfg.MaxDataPacket
		if end > len(message) {
			end = len(message)
		}
		chunk := message[offset:end]
		if err := t.link.Send(pbcp.NewHeader(pbcp.TypeData, 0), chunk); err != nil {
			return err
		}
		t.l.Debug("[TX] sent DATA", "bytes", len(chunk))
		if end < len(message) {
			time.Sleep(t.cfg.InterPacketDelay)
		}
	}
	return nil
}

// awaitFinalAck waits indefinitely for the receiver's ACK to the END
// packet.
func (t *Transmitter) awaitFinalAck() error {
	for {
		hdr, _, err := t.link.Recv()
		if err != nil {
			continue
		}
		if hdr.Type == pbcp.TypeAck {
			t.l.Info("[TX] received final ACK")
			return nil
		}
	}
}
