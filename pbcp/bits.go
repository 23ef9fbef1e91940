/*
NAME
  bits.go

DESCRIPTION
  bits.go implements the byte-bit bridge: LSB-first serialization between
  bytes and one-bit-per-byte slices, the form the afsk modem consumes and
  produces. This bit order is normative on the wire.

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

// BytesToBits expands b into one bit per output byte, LSB-first:
// bits[i*8+n] = (b[i] >> n) & 1.
func BytesToBits(b []byte) []byte {
	bits := make([]byte, len(b)*8)
	for i, by := range b {
		for n := 0; n < 8; n++ {
			bits[i*8+n] = (by >> uint(n)) & 1
		}
	}
	return bits
}

// BitsToBytes packs bits (one bit per byte, LSB-first, as produced by
// BytesToBits) back into bytes. Any trailing bits that don't fill a whole
// byte are dropped.
func BitsToBytes(bits []byte) []byte {
	n := len(bits) / 8
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var by byte
		for b := 0; b < 8; b++ {
			by |= (bits[i*8+b] & 1) << uint(b)
		}
		out[i] = by
	}
	return out
}
