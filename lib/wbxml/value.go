// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wbxml

// Value is a generic element carrier used where a schema permits any
// element and the element's identity must survive alongside its
// payload. The decode engine fills one Value per captured element;
// the encode engine replays it under its recorded token.
//
// Exactly one of Text and Opaque is normally set. An element that
// carried both inline text and an opaque payload keeps both.
type Value struct {
	// Page is the code page the element was captured from.
	Page int

	// Token is the page-relative element token.
	Token int

	// Name is the schema-declared element name, when the code page
	// declares one. Diagnostic only.
	Name string

	// Text is the accumulated inline string content.
	Text string

	// Opaque is the raw opaque payload, nil when none was present.
	Opaque []byte
}

// String returns the text form of the value: the inline text when
// present, otherwise the opaque payload reinterpreted as UTF-8.
func (v *Value) String() string {
	if v.Text != "" {
		return v.Text
	}
	return string(v.Opaque)
}
