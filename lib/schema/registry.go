// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"reflect"

	"github.com/bureau-foundation/wbxml/lib/wire"
)

// Registry holds the declared code pages and type bindings. It is
// built at startup — pages first, then [Bind] calls, then
// [Registry.Seal] — and is immutable and safe for concurrent use
// afterwards.
//
// Registry implements [wire.PageFinder], so it plugs directly into
// the wire decoder.
type Registry struct {
	pages  map[int]*CodePage
	types  map[reflect.Type]*TypeBinding
	names  map[string]*TypeBinding
	sealed bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pages: make(map[int]*CodePage),
		types: make(map[reflect.Type]*TypeBinding),
		names: make(map[string]*TypeBinding),
	}
}

// AddPage adds a code page to the registry. Panics on a duplicate
// index or after Seal.
func (r *Registry) AddPage(page *CodePage) *CodePage {
	if r.sealed {
		panic("schema: AddPage after Seal")
	}
	if existing, ok := r.pages[page.Index]; ok {
		panic(fmt.Sprintf("schema: code page %d declared twice (%q and %q)",
			page.Index, existing.Name, page.Name))
	}
	r.pages[page.Index] = page
	return page
}

// Page returns the code page at index, if declared.
func (r *Registry) Page(index int) (*CodePage, bool) {
	page, ok := r.pages[index]
	return page, ok
}

// BindingFor returns the binding for v's type. Values are always the
// registered pointer form (*T).
func (r *Registry) BindingFor(v any) (*TypeBinding, bool) {
	if v == nil {
		return nil, false
	}
	binding, ok := r.types[reflect.TypeOf(v)]
	return binding, ok
}

// BindingNamed returns the binding with the given element name.
func (r *Registry) BindingNamed(name string) (*TypeBinding, bool) {
	binding, ok := r.names[name]
	return binding, ok
}

// FindField implements [wire.PageFinder]: it resolves a (page, token)
// pair to the schema-declared field, attaching the model override's
// binding when the code page declares one.
func (r *Registry) FindField(page, token int) (wire.CodePageField, bool) {
	codePage, ok := r.pages[page]
	if !ok {
		return wire.CodePageField{}, false
	}
	field, ok := codePage.Field(token)
	if !ok {
		return wire.CodePageField{}, false
	}
	resolved := wire.CodePageField{Page: page, Token: token, Name: field.Name}
	if field.Model != "" {
		if model, ok := r.names[field.Model]; ok {
			resolved.Model = model
		}
	}
	return resolved, true
}

// Seal validates the registry and freezes it. Validation covers the
// cross-binding facts Bind cannot see:
//
//   - every Object member's element type has a binding (ghost object
//     collections need one for their item brackets); Opaque members
//     are carried by their inner codec and need none;
//   - ghost members are collections or nested objects — scalar
//     primitives cannot be emitted without a bracket;
//   - member tokens are consistent with the code page's declarations.
//
// Member tokens are recorded on the page that the decoder will be on
// when it reads them: a nested object member whose element type lives
// on a different page records its token on the child's page, because
// the page switch is emitted before the member's opening token.
// Sealing also adds each bound element type's name to its member's
// admissible classes, so model overrides resolve without repetition.
func (r *Registry) Seal() error {
	if r.sealed {
		return nil
	}
	for _, binding := range r.names {
		for _, member := range binding.Members {
			if err := r.sealMember(binding, member); err != nil {
				return err
			}
		}
	}
	r.sealed = true
	return nil
}

func (r *Registry) sealMember(binding *TypeBinding, member *Member) error {
	var elem *TypeBinding
	if member.elemType != nil && member.Kind != KindOpaque {
		var ok bool
		elem, ok = r.types[member.elemType]
		if !ok {
			return fmt.Errorf("schema: member %s.%s: element type %s has no binding",
				binding.Name, member.Name, member.elemType)
		}
		if !member.HasClass(elem.Name) {
			member.Classes = append(member.Classes, elem.Name)
		}
	}

	if member.Ghost() {
		if !member.Collection && member.Kind != KindObject {
			return fmt.Errorf("schema: member %s.%s: ghost members must be collections or nested objects",
				binding.Name, member.Name)
		}
		// A ghost's items arrive under the element type's own root
		// token. Marking that entry with the type's name as model
		// lets the decoder route the item back to this member.
		if elem != nil {
			elem.Page.setModel(elem.Token, elem.Name)
		}
		if member.ItemToken != NoToken {
			if err := binding.Page.defineMember(member.ItemToken, member.Name); err != nil {
				return fmt.Errorf("schema: member %s.%s: %w", binding.Name, member.Name, err)
			}
		}
		return nil
	}

	// A non-ghost member token lives on the page the decoder is on
	// when the token arrives: the child's page for cross-page nested
	// objects, the parent's page otherwise.
	page := binding.Page
	if elem != nil && !member.Collection && elem.Page != nil && elem.Page.Index != page.Index {
		page = elem.Page
	}
	if err := page.defineMember(member.Token, member.Name); err != nil {
		return fmt.Errorf("schema: member %s.%s: %w", binding.Name, member.Name, err)
	}
	return nil
}
