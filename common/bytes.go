// Package common holds the small, dependency-free value types shared across
// the interpreter: byte-slice helpers and the fixed-size Address/Hash types.
package common

import "encoding/hex"

// FromHex decodes a hex string with an optional 0x/0X prefix. Odd-length
// input is left-padded with a zero nibble.
func FromHex(s string) []byte {
	if len(s) > 1 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

// Bytes2Hex returns the lowercase hex encoding of d without a prefix.
func Bytes2Hex(d []byte) string {
	return hex.EncodeToString(d)
}

// CopyBytes returns an independent copy of b.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// LeftPadBytes zero-pads slice on the left up to length l.
func LeftPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded[l-len(slice):], slice)
	return padded
}

// RightPadBytes zero-pads slice on the right up to length l.
func RightPadBytes(slice []byte, l int) []byte {
	if l <= len(slice) {
		return slice
	}
	padded := make([]byte, l)
	copy(padded, slice)
	return padded
}
