// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wbxml

import "strings"

// Context carries the per-call state of one marshal or unmarshal
// invocation: document parameters, emission flags, the code-page
// stack, and the XML capture buffer.
//
// A Context belongs to exactly one in-flight call. The engines call
// [Context.Reset] on entry, so a Context can be reused across
// sequential calls but never shared between concurrent ones. The
// zero value is ready to use: a zero Version or Charset makes the
// encoder fall back to WBXML 1.2 and UTF-8 (with a warning).
type Context struct {
	// Version is the WBXML version byte written in the preamble.
	// Zero means "unset"; the encoder defaults it to [Version12].
	Version byte

	// Charset is the IANA MIBenum of the document charset. Zero
	// means "unset"; the encoder defaults it to [CharsetUTF8].
	Charset uint32

	// OpaqueStrings routes every string scalar and every string
	// collection item through OPAQUE instead of inline STR_I.
	// Some ActiveSync servers require this for payload fields.
	OpaqueStrings bool

	// CaptureXML enables the diagnostic XML trace during decoding.
	// The trace is appended to the capture buffer and read back via
	// [Context.XML]; it never influences object construction.
	CaptureXML bool

	pages []int
	xml   strings.Builder
}

// Reset clears the code-page stack and the XML capture buffer while
// preserving the document parameters and flags. The engines call it
// at the start of every marshal and unmarshal.
func (c *Context) Reset() {
	c.pages = c.pages[:0]
	c.xml.Reset()
}

// PushPage makes index the active code page.
func (c *Context) PushPage(index int) {
	c.pages = append(c.pages, index)
}

// PopPage removes the active code page and returns it. The second
// return is false when the stack is empty.
func (c *Context) PopPage() (int, bool) {
	if len(c.pages) == 0 {
		return 0, false
	}
	index := c.pages[len(c.pages)-1]
	c.pages = c.pages[:len(c.pages)-1]
	return index, true
}

// ActivePage returns the top of the code-page stack without removing
// it. The second return is false when no page has been entered yet.
func (c *Context) ActivePage() (int, bool) {
	if len(c.pages) == 0 {
		return 0, false
	}
	return c.pages[len(c.pages)-1], true
}

// PageDepth returns the current depth of the code-page stack.
func (c *Context) PageDepth() int {
	return len(c.pages)
}

// AppendXML appends a fragment to the XML capture buffer. The decode
// engine calls this for each event when CaptureXML is set.
func (c *Context) AppendXML(fragment string) {
	c.xml.WriteString(fragment)
}

// XML returns the capture buffer accumulated since the last Reset.
func (c *Context) XML() string {
	return c.xml.String()
}
