// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wbxml

// Global tokens (WBXML 1.2 §7.1). These are meaningful on every code
// page; everything else in the tag space is page-relative.
const (
	// TokenSwitchPage switches the active code page. Followed by a
	// single byte naming the new page index.
	TokenSwitchPage byte = 0x00

	// TokenEnd closes the current element.
	TokenEnd byte = 0x01

	// TokenStrI introduces an inline null-terminated UTF-8 string.
	TokenStrI byte = 0x03

	// TokenOpaque introduces an uninterpreted byte payload, prefixed
	// with its length as a multi-byte unsigned integer.
	TokenOpaque byte = 0xC3
)

// Element opcode modifier bits. The low six bits of a tag byte are the
// page-relative element token; the high two bits flag content and
// attributes.
const (
	// TagContent is set when the element has content and will be
	// terminated by TokenEnd. An element without it is empty.
	TagContent byte = 0x40

	// TagAttributes is set when the element carries attributes. This
	// codec targets the ActiveSync/SyncML subset, which never uses
	// attributes; the bit must be zero on both sides.
	TagAttributes byte = 0x80

	// TagTokenMask extracts the element token from a tag byte.
	TagTokenMask byte = 0x3F
)

// Document version bytes. ActiveSync servers emit and accept 1.2.
const (
	Version11 byte = 0x02
	Version12 byte = 0x03
)

// CharsetUTF8 is the IANA MIBenum for UTF-8, the only charset this
// codec emits and the only one it decodes.
const CharsetUTF8 uint32 = 106

// MinElementToken is the lowest valid page-relative element token.
// Values below it collide with the global token space.
const MinElementToken = 5

// MaxElementToken is the highest element token expressible in the low
// six bits of a tag byte. Tokens beyond it would require the LITERAL
// extension mechanism, which the ActiveSync/SyncML pages do not use.
const MaxElementToken = 63
