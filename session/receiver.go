/*
NAME
  receiver.go

DESCRIPTION
  receiver.go implements the receiver half of the PBCP session state
  machine: listening for SYNC, ACK/INFO exchange, and accumulating DATA
  packets until END or ERR.

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
	"github.com/ausocean/pbcp/config"
	"github.com/ausocean/pbcp/pbcp"
	"github.com/ausocean/utils/logging"
)

// resyncAfter is the number of consecutive failed-decode attempts the
// receiver tolerates while idle before it resets its decoder, per the
// reference this package implements: a long-running listener that
// never saw a clean preamble re-synchronizes its resonators rather than
// drifting further from symbol boundaries.
const resyncAfter = 5000

// Receiver drives the "R" role from the state diagram this package
// implements: IDLE -> SYNCING -> ACKED -> INFO_EXCHANGED -> TRANSFERRING
// -> CLOSING -> CLOSED, or FAILED if the peer reports an error.
type Receiver struct {
	link  *Link
	cfg   config.Config
	l     logging.Logger
	state State
}

// NewReceiver returns a Receiver ready to run.
func NewReceiver(link *Link, cfg config.Config, l logging.Logger) *Receiver {
	return &Receiver{link: link, cfg: cfg, l: l, state: StateIdle}
}

// State returns the receiver's current state.
func (r *Receiver) State() State { return r.state }

// Run listens for a SYNC, completes the handshake, and accumulates DATA
// packets until the peer sends END (returning the accumulated message)
// or ERR (returning *ProtocolError). It blocks indefinitely; the caller
// is expected to run it in its own goroutine.
func (r *Receiver) Run() ([]byte, error) {
	r.state = StateSyncing
	if err := r.awaitSync(); err != nil {
		r.state = StateFailed
		return nil, err
	}

	if err := r.link.Send(pbcp.NewHeader(pbcp.TypeAck, 0), nil); err != nil {
		r.state = StateFailed
		return nil, err
	}
	r.l.Info("[RX] sent ACK")
	r.state = StateAcked

	info := pbcp.InfoPayload{
		ReceiverID:    r.cfg.ReceiverID,
		FirmwareMajor: r.cfg.FirmwareMajor,
		FirmwareMinor: r.cfg.FirmwareMinor,
		Capabilities:  r.cfg.Capabilities,
	}
	if err := r.link.Send(pbcp.NewHeader(pbcp.TypeInfo, 0), pbcp.EncodeInfo(info)); err != nil {
		r.state = StateFailed
		return nil, err
	}
	r.l.Info("[RX] sent INFO", "receiverID", info.ReceiverID, "capabilities", info.Capabilities)
	r.state = StateInfoExchanged

	r.state = StateTransferring
	message, err := r.receiveMessage()
	if err != nil {
		r.state = StateFailed
		return nil, err
	}

	if err := r.link.Send(pbcp.NewHeader(pbcp.TypeAck, 0), nil); err != nil {
		r.state = StateFailed
		return nil, err
	}
	r.l.Info("[RX] sent final ACK")
	r.state = StateClosed
	r.l.Info("[#] receiver finished", "state", r.state.String(), "bytes", len(message))
	return message, nil
}

// awaitSync blocks until a SYNC packet is decoded, resetting the
// decoder's resonators every resyncAfter failed attempts.
func (r *Receiver) awaitSync() error {
	failures := 0
	for {
		hdr, _, err := r.link.Recv()
		if err != nil {
			failures++
			if failures >= resyncAfter {
				r.l.Debug("[RX] resynchronizing decoder")
				r.link.ResetDecoder()
				failures = 0
			}
			continue
		}
		failures = 0
		if hdr.Type == pbcp.TypeSync {
			r.l.Info("[RX] received SYNC")
			return nil
		}
	}
}

// receiveMessage accumulates DATA payloads into a growable buffer until
// END arrives, or returns *ProtocolError on ERR. The buffer starts at
// cfg.MaxDataPacket capacity and doubles as needed; a payload that would
// push the accumulated length past cfg.MessageBufferCap is rejected with
// *ErrMessageBufferFull without being appended.
func (r *Receiver) receiveMessage() ([]byte, error) {
	cap0 := r.cfg.MaxDataPacket
	if cap0 <= 0 {
		cap0 = 1
	}
	message := make([]byte, 0, cap0)

	for {
		hdr, payload, err := r.link.Recv()
		if err != nil {
			continue
		}

		switch hdr.Type {
		case pbcp.TypeData:
			if len(message)+len(payload) > r.cfg.MessageBufferCap {
				return nil, &ErrMessageBufferFull{Cap: r.cfg.MessageBufferCap}
			}
			if len(message)+len(payload) > cap(message) {
				grown := make([]byte, len(message), 2*cap(message)+len(payload))
				copy(grown, message)
				message = grown
			}
			message = append(message, payload...)
			r.l.Debug("[RX] received DATA", "bytes", len(payload), "total", len(message))

		case pbcp.TypeEnd:
			r.l.Info("[RX] received END")
			r.state = StateClosing
			return message, nil

		case pbcp.TypeErr:
			errPayload, decErr := pbcp.DecodeErr(payload)
			if decErr != nil {
				continue
			}
			r.l.Error("[!] peer reported error", "code", errPayload.Code)
			return nil, &ProtocolError{Code: errPayload.Code}

		default:
			// SYNC/ACK/INFO retransmissions during transfer are ignored.
		}
	}
}
