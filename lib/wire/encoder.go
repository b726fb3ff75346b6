// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"io"

	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

// Encoder writes WBXML primitives to an output stream. It tracks the
// open-element stack so that every pushed element is matched by an
// END opcode and so unbalanced pops are caught at the source rather
// than surfacing as a corrupt document on the peer.
//
// An Encoder is owned by one marshal call; it is not safe for
// concurrent use.
type Encoder struct {
	w    io.Writer
	open int
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteVersion writes the document version byte.
func (e *Encoder) WriteVersion(version byte) error {
	return e.writeByte(version)
}

// WritePublicID writes the document public identifier.
func (e *Encoder) WritePublicID(publicID uint32) error {
	return writeMultiByteUint32(e.w, publicID)
}

// WriteCharset writes the document charset as an IANA MIBenum.
func (e *Encoder) WriteCharset(charset uint32) error {
	return writeMultiByteUint32(e.w, charset)
}

// WriteStringTable writes a string-table length header. This codec
// never emits a populated table; callers pass zero.
func (e *Encoder) WriteStringTable(length uint32) error {
	return writeMultiByteUint32(e.w, length)
}

// SwitchPage emits a SWITCH_PAGE opcode selecting the given code page.
func (e *Encoder) SwitchPage(index int) error {
	if index < 0 || index > 0xFF {
		return fmt.Errorf("code page index %d out of range", index)
	}
	if err := e.writeByte(wbxml.TokenSwitchPage); err != nil {
		return err
	}
	return e.writeByte(byte(index))
}

// PushElement emits an element opcode for the given page-relative
// token. When hasContent is set the element is entered and must later
// be closed with PopElement; otherwise it is an empty element and the
// element stack is untouched.
func (e *Encoder) PushElement(token int, hasContent bool) error {
	if token < wbxml.MinElementToken || token > wbxml.MaxElementToken {
		return fmt.Errorf("element token 0x%02X out of range [0x05, 0x3F]", token)
	}
	opcode := byte(token)
	if hasContent {
		opcode |= wbxml.TagContent
		e.open++
	}
	return e.writeByte(opcode)
}

// PopElement closes the innermost open element with an END opcode.
func (e *Encoder) PopElement() error {
	if e.open == 0 {
		return fmt.Errorf("element pop without matching push")
	}
	e.open--
	return e.writeByte(wbxml.TokenEnd)
}

// InlineString emits s as a null-terminated inline string (STR_I).
func (e *Encoder) InlineString(s string) error {
	if err := e.writeByte(wbxml.TokenStrI); err != nil {
		return err
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		return err
	}
	return e.writeByte(0x00)
}

// Opaque emits data as an OPAQUE payload: the opcode, the length as a
// multi-byte integer, then the raw bytes.
func (e *Encoder) Opaque(data []byte) error {
	if err := e.writeByte(wbxml.TokenOpaque); err != nil {
		return err
	}
	if err := writeMultiByteUint32(e.w, uint32(len(data))); err != nil {
		return err
	}
	_, err := e.w.Write(data)
	return err
}

// PushOpaque emits a complete element carrying a single opaque
// payload: open bracket, OPAQUE, close bracket.
func (e *Encoder) PushOpaque(token int, data []byte) error {
	if err := e.PushElement(token, true); err != nil {
		return err
	}
	if err := e.Opaque(data); err != nil {
		return err
	}
	return e.PopElement()
}

// Finalize verifies the document is complete: every pushed element has
// been popped. There are no trailing bytes in this profile.
func (e *Encoder) Finalize() error {
	if e.open != 0 {
		return fmt.Errorf("%d elements left open at end of document", e.open)
	}
	return nil
}

func (e *Encoder) writeByte(b byte) error {
	_, err := e.w.Write([]byte{b})
	return err
}
