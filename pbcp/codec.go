/*
NAME
  codec.go

DESCRIPTION
  codec.go packs a Header and payload into a contiguous wire buffer and
  parses the inverse, plus marshalling for the INFO and ERR payload types.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pbcp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	// ErrShortFrame is returned by Decode when buf doesn't contain enough
	// bytes for a full header, or declares a length longer than the
	// remaining bytes in buf.
	ErrShortFrame = errors.New("pbcp: short frame")

	// ErrBadHeader is returned by Decode when the preamble, magic, or type
	// fields don't match a recognized PBCP packet.
	ErrBadHeader = errors.New("pbcp: bad header")
)

// Encode packs hdr and payload into a newly allocated contiguous buffer:
// the 5-byte header (little-endian length) immediately followed by exactly
// hdr.Length payload bytes. hdr.Length is overwritten with len(payload)
// before encoding, so callers need not keep the two in sync by hand.
func Encode(hdr Header, payload []byte) []byte {
	hdr.Length = uint16(len(payload))
	buf := make([]byte, HeaderSize+len(payload))
	buf[0] = hdr.Preamble
	buf[1] = hdr.Magic
	buf[2] = byte(hdr.Type)
	binary.LittleEndian.PutUint16(buf[3:5], hdr.Length)
	copy(buf[HeaderSize:], payload)
	return buf
}

// Decode parses buf as a PBCP frame, validating preamble, magic and type.
// The returned payload aliases buf; callers that retain it across buffer
// reuse must copy it themselves.
func Decode(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, ErrShortFrame
	}
	hdr := Header{
		Preamble: buf[0],
		Magic:    buf[1],
		Type:     Type(buf[2]),
		Length:   binary.LittleEndian.Uint16(buf[3:5]),
	}
	if hdr.Preamble != Preamble || hdr.Magic != Magic || !hdr.Type.valid() {
		return Header{}, nil, ErrBadHeader
	}
	if int(hdr.Length) > len(buf)-HeaderSize {
		return Header{}, nil, ErrShortFrame
	}
	return hdr, buf[HeaderSize : HeaderSize+int(hdr.Length)], nil
}

// EncodeInfo marshals p into its wire representation.
func EncodeInfo(p InfoPayload) []byte {
	buf := make([]byte, InfoPayloadSize)
	binary.LittleEndian.PutUint32(buf[0:4], p.ReceiverID)
	buf[4] = p.FirmwareMajor
	buf[5] = p.FirmwareMinor
	buf[6] = p.Capabilities
	return buf
}

// DecodeInfo parses an INFO payload.
func DecodeInfo(buf []byte) (InfoPayload, error) {
	if len(buf) < InfoPayloadSize {
		return InfoPayload{}, errors.Wrap(ErrShortFrame, "INFO payload")
	}
	return InfoPayload{
		ReceiverID:    binary.LittleEndian.Uint32(buf[0:4]),
		FirmwareMajor: buf[4],
		FirmwareMinor: buf[5],
		Capabilities:  buf[6],
	}, nil
}

// EncodeErr marshals p into its wire representation.
func EncodeErr(p ErrPayload) []byte {
	return []byte{byte(p.Code)}
}

// DecodeErr parses an ERR payload.
func DecodeErr(buf []byte) (ErrPayload, error) {
	if len(buf) < ErrPayloadSize {
		return ErrPayload{}, errors.Wrap(ErrShortFrame, "ERR payload")
	}
	return ErrPayload{Code: ErrorCode(buf[0])}, nil
}
