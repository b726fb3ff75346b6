// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"reflect"

	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

// TypeBinding maps a Go type to its wire identity: the code page it
// lives on, its root element token, and its ordered member list.
// Member order is emission order; the token index is the decode path.
type TypeBinding struct {
	// Name is the binding's element name, unique in the registry.
	Name string

	// Page is the code page the type's elements live on.
	Page *CodePage

	// Token is the type's root element token.
	Token int

	// Members is the ordered member list. Emission follows this
	// declaration order.
	Members []*Member

	goType  reflect.Type
	newFn   func() any
	byToken map[int]*Member
}

// New instantiates the bound type. The result is always the pointer
// form registered by [Bind].
func (b *TypeBinding) New() any {
	return b.newFn()
}

// MemberByToken returns the member bound to token, if any.
func (b *TypeBinding) MemberByToken(token int) (*Member, bool) {
	member, ok := b.byToken[token]
	return member, ok
}

// Bind registers a binding for *T in the registry: its element name,
// the code page (by index — the page must already exist in the
// registry), its root token, and its members in emission order.
//
// Bind panics on declaration conflicts (unknown page, duplicate type
// or name, out-of-range or duplicate tokens). Declarations run at
// startup; a conflict is a programming error, not a runtime
// condition.
func Bind[T any](r *Registry, name string, pageIndex, token int, members ...*Member) *TypeBinding {
	if r.sealed {
		panic("schema: Bind after Seal")
	}
	page, ok := r.pages[pageIndex]
	if !ok {
		panic(fmt.Sprintf("schema: binding %q references undeclared code page %d", name, pageIndex))
	}
	if token < wbxml.MinElementToken || token > wbxml.MaxElementToken {
		panic(fmt.Sprintf("schema: binding %q root token 0x%02X out of range [0x05, 0x3F]", name, token))
	}

	goType := reflect.TypeOf((*T)(nil))
	if _, exists := r.types[goType]; exists {
		panic(fmt.Sprintf("schema: type %s bound twice", goType))
	}
	if _, exists := r.names[name]; exists {
		panic(fmt.Sprintf("schema: binding name %q used twice", name))
	}

	binding := &TypeBinding{
		Name:    name,
		Page:    page,
		Token:   token,
		Members: members,
		goType:  goType,
		newFn:   func() any { return new(T) },
		byToken: make(map[int]*Member, len(members)),
	}
	for _, member := range members {
		if member.Token == NoToken {
			continue
		}
		if _, dup := binding.byToken[member.Token]; dup {
			panic(fmt.Sprintf("schema: binding %q declares token 0x%02X twice", name, member.Token))
		}
		binding.byToken[member.Token] = member
	}

	r.types[goType] = binding
	r.names[name] = binding
	page.defineBinding(token, name)
	return binding
}
