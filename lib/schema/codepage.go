// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"

	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

// NoToken is the reserved token marking a ghost member: one that
// emits no element bracket of its own.
const NoToken = -1

// CodePage is a numbered namespace of element tokens.
type CodePage struct {
	// Index is the page number selected by SWITCH_PAGE, 0–255.
	Index int

	// Name is the page's human-readable name (diagnostic only).
	Name string

	// PublicID is the document public identifier written in the
	// preamble when a type bound to this page is the root.
	PublicID uint32

	fields map[int]Field
}

// Field is one token entry of a code page: the element name and,
// optionally, the name of the bound type to instantiate when this
// element appears inside a polymorphic collection.
type Field struct {
	// Name is the element name.
	Name string

	// Model names the binding to instantiate for this element when
	// the receiving member declares it among its classes. Empty for
	// elements with no override.
	Model string

	prov provenance
}

// provenance ranks where a token entry came from: explicit
// declarations are authoritative, member names override names derived
// from binding registration.
type provenance int

const (
	declExplicit provenance = iota
	declMember
	declBinding
)

// NewCodePage returns an empty code page.
func NewCodePage(index int, name string, publicID uint32) *CodePage {
	return &CodePage{
		Index:    index,
		Name:     name,
		PublicID: publicID,
		fields:   make(map[int]Field),
	}
}

// Define names a token on the page. Defining a token twice with a
// different name is a declaration conflict and panics; declarations
// run at startup, before any stream is in flight.
func (p *CodePage) Define(token int, name string) *CodePage {
	return p.DefineModel(token, name, "")
}

// DefineModel names a token and declares a model override for it.
func (p *CodePage) DefineModel(token int, name, model string) *CodePage {
	if token < wbxml.MinElementToken || token > wbxml.MaxElementToken {
		panic(fmt.Sprintf("schema: token 0x%02X on page %d out of range [0x05, 0x3F]", token, p.Index))
	}
	if existing, ok := p.fields[token]; ok && existing.prov == declExplicit && existing.Name != name {
		panic(fmt.Sprintf("schema: token 0x%02X on page %d already defined as %q, redefined as %q",
			token, p.Index, existing.Name, name))
	}
	p.fields[token] = Field{Name: name, Model: model, prov: declExplicit}
	return p
}

// Field returns the entry for a token, if defined.
func (p *CodePage) Field(token int) (Field, bool) {
	field, ok := p.fields[token]
	return field, ok
}

// defineBinding records a token name derived from a binding's root
// element. It never overrides an existing entry of any provenance.
func (p *CodePage) defineBinding(token int, name string) {
	if _, ok := p.fields[token]; !ok {
		p.fields[token] = Field{Name: name, prov: declBinding}
	}
}

// defineMember records a member's token name. Member names override
// binding-derived names (a wrapper member and its element type share
// a token, and the member name is the element's wire name) but never
// explicit declarations. Two members naming the same token
// differently is a genuine conflict.
func (p *CodePage) defineMember(token int, name string) error {
	existing, ok := p.fields[token]
	if !ok {
		p.fields[token] = Field{Name: name, prov: declMember}
		return nil
	}
	switch existing.prov {
	case declBinding:
		p.fields[token] = Field{Name: name, Model: existing.Model, prov: declMember}
		return nil
	default:
		if existing.Name != name {
			return fmt.Errorf("token 0x%02X on page %d already names %q", token, p.Index, existing.Name)
		}
		return nil
	}
}

// setModel attaches a model override to an existing token entry,
// leaving an entry that already names a model untouched.
func (p *CodePage) setModel(token int, model string) {
	if field, ok := p.fields[token]; ok && field.Model == "" {
		field.Model = model
		p.fields[token] = field
	}
}
