// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "io"

// writeMultiByteUint32 writes v in the WBXML mb_u_int32 encoding:
// big-endian groups of seven bits, continuation bit 0x80 set on every
// byte except the last.
func writeMultiByteUint32(w io.Writer, v uint32) error {
	var buffer [5]byte
	position := len(buffer) - 1
	buffer[position] = byte(v & 0x7F)
	v >>= 7
	for v > 0 {
		position--
		buffer[position] = byte(v&0x7F) | 0x80
		v >>= 7
	}
	_, err := w.Write(buffer[position:])
	return err
}

// readMultiByteUint32 reads a WBXML mb_u_int32. A value that does not
// terminate within five bytes overflows uint32 and is malformed.
func readMultiByteUint32(r io.ByteReader) (uint32, error) {
	var value uint32
	for index := 0; ; index++ {
		if index == 5 {
			return 0, &FormatError{Detail: "multi-byte integer exceeds 32 bits"}
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, nil
		}
	}
}
