// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wbxml

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a codec failure. Callers branch on the kind via
// [IsKind] rather than matching message text.
type ErrorKind int

const (
	// KindSchemaMissing: the root or a nested object has no binding.
	KindSchemaMissing ErrorKind = iota

	// KindPageMissing: no code page could be determined for a bound
	// object about to be entered.
	KindPageMissing

	// KindRequiredMissing: a member marked required is nil or empty.
	KindRequiredMissing

	// KindUnmappedElement: an incoming start element resolved to no
	// member and no fallback applied.
	KindUnmappedElement

	// KindUnmappedOpaque: an opaque payload arrived with no
	// assignable target.
	KindUnmappedOpaque

	// KindUnsupportedOpaqueTarget: an opaque payload targeted a typed
	// member with no registered inner codec.
	KindUnsupportedOpaqueTarget

	// KindMalformed: the byte stream violated the WBXML format.
	KindMalformed

	// KindIoFailure: the underlying stream failed.
	KindIoFailure
)

// String returns the stable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindSchemaMissing:
		return "schema missing"
	case KindPageMissing:
		return "code page missing"
	case KindRequiredMissing:
		return "required member missing"
	case KindUnmappedElement:
		return "unmapped element"
	case KindUnmappedOpaque:
		return "unmapped opaque"
	case KindUnsupportedOpaqueTarget:
		return "unsupported opaque target"
	case KindMalformed:
		return "malformed document"
	case KindIoFailure:
		return "stream failure"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// Error is the structured failure type surfaced by both engines.
// Callers can use errors.As to extract the structured information:
//
//	var codecErr *wbxml.Error
//	if errors.As(err, &codecErr) {
//	    if codecErr.Kind == wbxml.KindRequiredMissing { ... }
//	}
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Path is the breadcrumb of member names from the root down to
	// the failing member. Empty for failures before descent starts.
	Path []string

	// Detail is the human-readable specifics of this occurrence.
	Detail string

	// Err is the wrapped cause, when the failure originated below
	// the engines (wire decoder, inner codec, stream).
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("wbxml: ")
	b.WriteString(e.Kind.String())
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is (or wraps) a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var codecErr *Error
	if errors.As(err, &codecErr) {
		return codecErr.Kind == kind
	}
	return false
}
