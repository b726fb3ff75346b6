// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package marshal

import (
	"github.com/bureau-foundation/wbxml/lib/schema"
	"github.com/bureau-foundation/wbxml/lib/wbxml"
	"github.com/bureau-foundation/wbxml/lib/wire"
)

// frameKind tags what a parse-stack frame is populating. The decode
// engine dispatches on the tag instead of inspecting the target.
type frameKind int

const (
	// frameObject populates a bound object's members.
	frameObject frameKind = iota

	// frameCollection appends string items to a collection.
	frameCollection

	// frameScalar awaits the Text or Opaque payload of one member.
	frameScalar

	// framePlaceholder balances the bracket of a presence-coded
	// element; no further assignment is expected.
	framePlaceholder

	// frameValue fills a generic *wbxml.Value carrier.
	frameValue
)

// frame is one open element of the parse stack: the value being
// populated and the members eligible to receive the next child.
type frame struct {
	kind       frameKind
	name       string
	target     any
	candidates []*schema.Member
	member     *schema.Member
	value      *wbxml.Value
}

// findMember resolves an incoming element against the frame's
// candidate members:
//
//  1. a member whose token (or collection item token) equals the
//     element's token;
//  2. a member admitting the element's model override among its
//     classes;
//  3. with a single candidate: an untyped slot, or a generic value
//     carrier.
//
// Returns nil when nothing resolves.
func (f *frame) findMember(cp wire.CodePageField) *schema.Member {
	for _, member := range f.candidates {
		if member.Token != schema.NoToken && member.Token == cp.Token {
			return member
		}
		if member.Collection && member.ItemToken != schema.NoToken && member.ItemToken == cp.Token {
			return member
		}
	}

	if model, ok := cp.Model.(*schema.TypeBinding); ok && model != nil {
		for _, member := range f.candidates {
			if member.HasClass(model.Name) {
				return member
			}
		}
	}

	if len(f.candidates) == 1 {
		sole := f.candidates[0]
		if sole.Kind == schema.KindAny || sole.Kind == schema.KindValue {
			return sole
		}
	}

	return nil
}

// breadcrumb renders the member-name path from the root frame down,
// optionally extended with the element being processed.
func breadcrumb(stack []*frame, extra string) []string {
	path := make([]string, 0, len(stack)+1)
	for _, f := range stack {
		path = append(path, f.name)
	}
	if extra != "" {
		path = append(path, extra)
	}
	return path
}
