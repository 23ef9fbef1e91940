/*
NAME
  state.go

DESCRIPTION
  state.go defines the PBCP session state machine's states: the handshake
  from SYNC through INFO, data transfer, and termination described by the
  spec this package implements.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package session implements the PBCP half-duplex session state machine on
// top of the afsk modem and pbcp packet codec: a SYNC/ACK/INFO handshake,
// a sequence of DATA packets, and END/ACK termination, for both the
// transmitter and receiver roles.
package session

// State is one stage of the session state machine. Each role's Run method
// steps through these states in sequence, recording the current one as it
// goes; there is no table of transition functions keyed by State.
type State int

// Session states, in the order a successful transfer passes through them.
const (
	StateIdle State = iota
	StateSyncing
	StateAcked
	StateInfoExchanged
	StateTransferring
	StateClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSyncing:
		return "SYNCING"
	case StateAcked:
		return "ACKED"
	case StateInfoExchanged:
		return "INFO_EXCHANGED"
	case StateTransferring:
		return "TRANSFERRING"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
