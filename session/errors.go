/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the typed errors a session can fail with: local
  handshake exhaustion and a peer-reported protocol error.

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
	"fmt"

	"github.com/ausocean/pbcp/pbcp"
)

// HandshakeError is returned when a transmitter exhausts its SYNC retries
// without receiving an ACK. It carries no peer information, since by
// definition no peer ever responded.
type HandshakeError struct {
	Retries int
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("session: failed to handshake after %d retries", e.Retries)
}

// ProtocolError is returned when a peer sent an ERR packet, reporting an
// unrecoverable condition it detected.
type ProtocolError struct {
	Code pbcp.ErrorCode
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("session: peer reported error: %s (0x%02X)", e.Code, byte(e.Code))
}

// ErrMessageBufferFull is returned by Receiver.Run when an incoming DATA
// payload would grow the accumulated message past Config.MessageBufferCap.
// The spec this protocol implements left this case as a silent drop; this
// implementation surfaces it explicitly instead (see config.Config).
type ErrMessageBufferFull struct {
	Cap int
}

func (e *ErrMessageBufferFull) Error() string {
	return fmt.Sprintf("session: message buffer exceeded capacity of %d bytes", e.Cap)
}
