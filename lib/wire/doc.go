// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the byte-level WBXML 1.2 primitives: the
// token [Encoder] the marshalling engine drives, and the pull
// [Decoder] that turns a byte stream into a sequence of
// StartElement/Text/Opaque/EndElement events.
//
// The package knows nothing about Go types or bindings. Element
// tokens arriving off the wire are resolved through a caller-supplied
// [PageFinder]; lib/schema's Registry implements it.
//
// Strings are always inlined (STR_I) or carried as opaque payloads.
// String tables are parsed and skipped on input and never emitted on
// output.
package wire
