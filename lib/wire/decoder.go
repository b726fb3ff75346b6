// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

// Header is the parsed WBXML document preamble.
type Header struct {
	// Version is the raw version byte (0x03 for WBXML 1.2).
	Version byte

	// PublicID is the document public identifier.
	PublicID uint32

	// Charset is the IANA MIBenum of the document charset.
	Charset uint32

	// StringTableLength is the declared string-table length. The
	// decoder skips the table; this profile never references it.
	StringTableLength uint32
}

// Decoder is a pull decoder over a WBXML byte stream. Each call to
// [Decoder.Next] returns the next event; the stream ends with io.EOF
// once the document is fully consumed.
//
// The input is read strictly sequentially, once. A Decoder is owned
// by one unmarshal call and is not safe for concurrent use.
type Decoder struct {
	r      *bufio.Reader
	finder PageFinder

	header     Header
	headerRead bool

	page    int
	stack   []CodePageField
	pending []Event
	offset  int
}

// NewDecoder returns a Decoder reading from r and resolving element
// tokens through finder.
func NewDecoder(r io.Reader, finder PageFinder) *Decoder {
	return &Decoder{r: bufio.NewReader(r), finder: finder}
}

// NewDecoderBytes returns a Decoder over an in-memory document.
func NewDecoderBytes(data []byte, finder PageFinder) *Decoder {
	return NewDecoder(bytes.NewReader(data), finder)
}

// Header parses and returns the document preamble. It is called
// implicitly by the first Next; calling it directly lets callers
// inspect the preamble before pulling events.
func (d *Decoder) Header() (Header, error) {
	if d.headerRead {
		return d.header, nil
	}
	if err := d.readHeader(); err != nil {
		return Header{}, err
	}
	return d.header, nil
}

// Next returns the next decode event, or io.EOF when the document is
// exhausted. Format violations surface as *FormatError; stream
// failures pass through unchanged.
func (d *Decoder) Next() (*Event, error) {
	if !d.headerRead {
		if err := d.readHeader(); err != nil {
			return nil, err
		}
	}

	if len(d.pending) > 0 {
		event := d.pending[0]
		d.pending = d.pending[1:]
		return &event, nil
	}

	for {
		b, err := d.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(d.stack) > 0 {
					return nil, d.malformed("stream ended with %d elements open", len(d.stack))
				}
				return nil, io.EOF
			}
			return nil, err
		}

		switch b {
		case wbxml.TokenSwitchPage:
			index, err := d.readByte()
			if err != nil {
				return nil, d.truncated(err, "SWITCH_PAGE")
			}
			d.page = int(index)

		case wbxml.TokenEnd:
			if len(d.stack) == 0 {
				return nil, d.malformed("END opcode with no open element")
			}
			field := d.stack[len(d.stack)-1]
			d.stack = d.stack[:len(d.stack)-1]
			return &Event{Type: EndElement, Field: field}, nil

		case wbxml.TokenStrI:
			text, err := d.readCString()
			if err != nil {
				return nil, err
			}
			if len(d.stack) == 0 {
				return nil, d.malformed("inline string outside any element")
			}
			return &Event{Type: Text, Field: d.stack[len(d.stack)-1], Text: text}, nil

		case wbxml.TokenOpaque:
			length, err := readMultiByteUint32(d)
			if err != nil {
				return nil, d.truncated(err, "OPAQUE length")
			}
			payload := make([]byte, length)
			if _, err := io.ReadFull(d.r, payload); err != nil {
				return nil, d.truncated(err, "OPAQUE payload")
			}
			d.offset += int(length)
			if len(d.stack) == 0 {
				return nil, d.malformed("opaque payload outside any element")
			}
			return &Event{Type: Opaque, Field: d.stack[len(d.stack)-1], Opaque: payload}, nil

		default:
			return d.startElement(b)
		}
	}
}

// startElement decodes a tag byte into a StartElement event. Empty
// elements (content bit clear) queue their EndElement immediately so
// consumers always see balanced brackets.
func (d *Decoder) startElement(opcode byte) (*Event, error) {
	if opcode&wbxml.TagAttributes != 0 {
		return nil, d.malformed("element with attributes (opcode 0x%02X); attributes are not part of this profile", opcode)
	}

	token := int(opcode & wbxml.TagTokenMask)
	if token < wbxml.MinElementToken {
		return nil, d.malformed("unhandled global token 0x%02X", opcode)
	}

	if d.finder == nil {
		return nil, d.malformed("token 0x%02X on page %d with no schema to resolve it", token, d.page)
	}
	field, ok := d.finder.FindField(d.page, token)
	if !ok {
		return nil, d.malformed("unknown token 0x%02X on page %d", token, d.page)
	}
	field.Page = d.page
	field.Token = token

	if opcode&wbxml.TagContent != 0 {
		d.stack = append(d.stack, field)
	} else {
		d.pending = append(d.pending, Event{Type: EndElement, Field: field})
	}
	return &Event{Type: StartElement, Field: field}, nil
}

// readHeader parses the preamble and skips the string table.
func (d *Decoder) readHeader() error {
	version, err := d.readByte()
	if err != nil {
		return d.truncated(err, "version")
	}
	publicID, err := readMultiByteUint32(d)
	if err != nil {
		return d.truncated(err, "public identifier")
	}
	charset, err := readMultiByteUint32(d)
	if err != nil {
		return d.truncated(err, "charset")
	}
	tableLength, err := readMultiByteUint32(d)
	if err != nil {
		return d.truncated(err, "string table length")
	}
	if tableLength > 0 {
		// The table contents are never referenced in this profile
		// (STR_T is not handled), so skip rather than retain.
		if _, err := d.r.Discard(int(tableLength)); err != nil {
			return d.truncated(err, "string table")
		}
		d.offset += int(tableLength)
	}

	d.header = Header{
		Version:           version,
		PublicID:          publicID,
		Charset:           charset,
		StringTableLength: tableLength,
	}
	d.headerRead = true

	if charset != 0 && charset != wbxml.CharsetUTF8 {
		slog.Warn("document charset is not UTF-8, decoding strings as UTF-8 anyway",
			"charset", charset)
	}
	return nil
}

// readCString reads bytes up to the terminating NUL.
func (d *Decoder) readCString() (string, error) {
	raw, err := d.r.ReadBytes(0x00)
	if err != nil {
		return "", d.truncated(err, "inline string")
	}
	d.offset += len(raw)
	return string(raw[:len(raw)-1]), nil
}

// ReadByte implements io.ByteReader so readMultiByteUint32 can track
// the stream offset through the decoder itself.
func (d *Decoder) ReadByte() (byte, error) {
	return d.readByte()
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	d.offset++
	return b, nil
}

func (d *Decoder) malformed(format string, args ...any) error {
	return &FormatError{Offset: d.offset, Detail: fmt.Sprintf(format, args...)}
}

// truncated converts an unexpected end of input inside a construct
// into a FormatError naming the construct. Genuine stream failures
// pass through unchanged.
func (d *Decoder) truncated(err error, construct string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Offset: d.offset, Detail: "stream ended inside " + construct}
	}
	return err
}

// anyTokenFinder admits every element token. The nested-document
// probe decodes one event from a payload whose tokens belong to the
// embedded document's schema, not ours, so names cannot be resolved.
type anyTokenFinder struct{}

func (anyTokenFinder) FindField(page, token int) (CodePageField, bool) {
	return CodePageField{Page: page, Token: token}, true
}

// IsDocument reports whether data plausibly carries a WBXML document:
// a recognized version byte, a well-formed preamble, and at least one
// decodable body event. Used by the decode engine to decide whether
// an opaque payload is a nested document or plain text. A bare
// preamble with no body is not a document.
func IsDocument(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	switch data[0] {
	case 0x01, wbxml.Version11, wbxml.Version12:
	default:
		return false
	}
	d := NewDecoderBytes(data, anyTokenFinder{})
	_, err := d.Next()
	return err == nil
}
