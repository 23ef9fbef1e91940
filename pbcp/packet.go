/*
NAME
  packet.go

DESCRIPTION
  packet.go defines the PBCP (Packet-Based Communication Protocol) wire
  types: the fixed 5-byte header, the recognized packet types, error codes,
  and the typed payloads carried by INFO and ERR packets.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pbcp implements the Packet-Based Communication Protocol wire
// format: a 5-byte little-endian header, typed packets, and the
// LSB-first byte/bit bridge used to frame them for the afsk modem.
//
// There is no checksum and no framing delimiter beyond the fixed preamble
// and magic bytes; Decode validates only those two fields and the packet
// type.
package pbcp

// Fixed header values.
const (
	Preamble byte = 0x45
	Magic    byte = 0xD5
)

// Type identifies a PBCP packet's purpose.
type Type byte

// Recognized packet types.
const (
	TypeSync Type = 0x01 // Transmitter requests communication. No payload.
	TypeAck  Type = 0x02 // Receiver acknowledges SYNC, and END with the final ACK. No payload.
	TypeNack Type = 0x03 // Defined but never sent by this implementation; must be accepted and ignored.
	TypeInfo Type = 0x04 // Receiver capability/version report.

	TypeData Type = 0x10 // Raw application payload.
	TypeEnd  Type = 0x11 // End of transmission. No payload.
	TypeErr  Type = 0x12 // Unrecoverable protocol error, carries an ErrorCode.
)

func (t Type) String() string {
	switch t {
	case TypeSync:
		return "SYNC"
	case TypeAck:
		return "ACK"
	case TypeNack:
		return "NACK"
	case TypeInfo:
		return "INFO"
	case TypeData:
		return "DATA"
	case TypeEnd:
		return "END"
	case TypeErr:
		return "ERR"
	default:
		return "UNKNOWN"
	}
}

func (t Type) valid() bool {
	switch t {
	case TypeSync, TypeAck, TypeNack, TypeInfo, TypeData, TypeEnd, TypeErr:
		return true
	default:
		return false
	}
}

// ErrorCode identifies the reason an ERR packet was sent.
type ErrorCode byte

// Recognized error codes.
const (
	ErrInvalidCapabilities ErrorCode = 0x01
	ErrInvalidPacket       ErrorCode = 0x02
	ErrLengthMismatch      ErrorCode = 0x03
	ErrUnknown             ErrorCode = 0xFF
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidCapabilities:
		return "invalid capabilities"
	case ErrInvalidPacket:
		return "invalid packet"
	case ErrLengthMismatch:
		return "length mismatch"
	case ErrUnknown:
		return "unknown error"
	default:
		return "unrecognized error"
	}
}

// HeaderSize is the number of bytes a Header occupies on the wire.
const HeaderSize = 5

// Header is the fixed 5-byte PBCP header, little-endian on the wire.
type Header struct {
	Preamble byte
	Magic    byte
	Type     Type
	Length   uint16 // Payload bytes that follow the header.
}

// NewHeader builds a Header with Preamble/Magic already populated.
func NewHeader(t Type, length uint16) Header {
	return Header{Preamble: Preamble, Magic: Magic, Type: t, Length: length}
}

// InfoPayload is the INFO packet's payload: the receiver's identity,
// firmware version, and capability bitfield.
type InfoPayload struct {
	ReceiverID    uint32
	FirmwareMajor uint8
	FirmwareMinor uint8
	Capabilities  uint8
}

// InfoPayloadSize is the wire size of InfoPayload.
const InfoPayloadSize = 4 + 1 + 1 + 1

// ErrPayload is the ERR packet's payload: a single error code.
type ErrPayload struct {
	Code ErrorCode
}

// ErrPayloadSize is the wire size of ErrPayload.
const ErrPayloadSize = 1
