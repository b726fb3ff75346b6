// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"reflect"
	"slices"

	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

// Kind is the wire shape of a member's value (for collections, of one
// item). The engines branch on Kind instead of inspecting values at
// call time.
type Kind int

const (
	// KindString is an inline string (or opaque, per context flag).
	KindString Kind = iota

	// KindInt is a stringifiable integer, written in decimal.
	KindInt

	// KindBool is presence-coded: true is an empty element, false
	// and nil emit nothing.
	KindBool

	// KindBytes is an opaque byte payload.
	KindBytes

	// KindObject is a nested bound object.
	KindObject

	// KindValue is a generic *wbxml.Value carrier.
	KindValue

	// KindAny is an untyped slot: strings, raw nested documents, and
	// bound objects are all admissible.
	KindAny

	// KindOpaque is a typed object carried as an opaque payload
	// through a registered inner codec.
	KindOpaque
)

// OpaqueCodec converts between a typed value and the opaque payload
// that carries it. lib/codec provides a CBOR-backed implementation.
type OpaqueCodec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Member declares one member of a bound type: its element token (or
// [NoToken] for a ghost), its cardinality, its wire shape, and the
// typed accessors the engines go through. Members are built with the
// package-level constructors ([String], [Objects], ...) and are
// immutable once their binding's registry is sealed.
type Member struct {
	// Name is the member's element name.
	Name string

	// Token is the page-relative element token, or NoToken for a
	// ghost member.
	Token int

	// ItemToken brackets each string item of a ghost collection.
	// NoToken when unused.
	ItemToken int

	// Collection marks a repeated member.
	Collection bool

	// Kind is the wire shape of the value (or of one item).
	Kind Kind

	// Required makes marshalling fail when the value is nil or empty.
	Required bool

	// Filters are the member's filter tags. With a non-empty caller
	// filter set, only members whose tags intersect it are emitted.
	Filters []string

	// Classes are the binding names admissible for this member via a
	// code-page model override. The bound element type's own name is
	// added automatically when the registry is sealed.
	Classes []string

	// Codec is the inner codec for KindOpaque members.
	Codec OpaqueCodec

	elemType reflect.Type
	get      func(parent any) any
	set      func(parent any, value any)
	add      func(parent any, item any)
	items    func(parent any) []any
	newElem  func() any
}

// Ghost reports whether the member emits no element bracket of its
// own.
func (m *Member) Ghost() bool {
	return m.Token == NoToken
}

// ValueOf reads the member from parent. Nil means absent: empty
// strings, zero ints, false booleans, empty slices, and nil pointers
// all read as absent.
func (m *Member) ValueOf(parent any) any {
	return m.get(parent)
}

// Assign writes value to the member on parent. The value must match
// the member's kind (string, int, bool, []byte, bound pointer, ...).
func (m *Member) Assign(parent, value any) {
	m.set(parent, value)
}

// Append adds one item to a collection member on parent.
func (m *Member) Append(parent, item any) {
	m.add(parent, item)
}

// Items snapshots a collection member's items in order.
func (m *Member) Items(parent any) []any {
	return m.items(parent)
}

// NewElem instantiates the member's declared element type. The second
// return is false for members with no instantiable type (strings,
// untyped lists).
func (m *Member) NewElem() (any, bool) {
	if m.newElem == nil {
		return nil, false
	}
	return m.newElem(), true
}

// HasClass reports whether name is among the member's admissible
// binding names.
func (m *Member) HasClass(name string) bool {
	return slices.Contains(m.Classes, name)
}

// MemberOption adjusts a member declaration.
type MemberOption func(*Member)

// Required marks the member required: marshalling fails with a
// required-missing error when it is nil or empty.
func Required() MemberOption {
	return func(m *Member) { m.Required = true }
}

// WithFilters sets the member's filter tags.
func WithFilters(tags ...string) MemberOption {
	return func(m *Member) { m.Filters = tags }
}

// WithClasses declares additional binding names admissible for this
// member through code-page model overrides.
func WithClasses(names ...string) MemberOption {
	return func(m *Member) { m.Classes = append(m.Classes, names...) }
}

func newMember(name string, token int, kind Kind, opts []MemberOption) *Member {
	m := &Member{Name: name, Token: token, ItemToken: NoToken, Kind: kind}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// String declares a string scalar member.
func String[T any](name string, token int, access func(*T) *string, opts ...MemberOption) *Member {
	m := newMember(name, token, KindString, opts)
	m.get = func(parent any) any {
		if s := *access(parent.(*T)); s != "" {
			return s
		}
		return nil
	}
	m.set = func(parent, value any) { *access(parent.(*T)) = value.(string) }
	return m
}

// Int declares an integer scalar member, written as its decimal
// string form. Zero reads as absent.
func Int[T any](name string, token int, access func(*T) *int, opts ...MemberOption) *Member {
	m := newMember(name, token, KindInt, opts)
	m.get = func(parent any) any {
		if v := *access(parent.(*T)); v != 0 {
			return v
		}
		return nil
	}
	m.set = func(parent, value any) { *access(parent.(*T)) = value.(int) }
	return m
}

// Bool declares a presence-coded boolean member: true emits an empty
// element, false emits nothing.
func Bool[T any](name string, token int, access func(*T) *bool, opts ...MemberOption) *Member {
	m := newMember(name, token, KindBool, opts)
	m.get = func(parent any) any {
		if *access(parent.(*T)) {
			return true
		}
		return nil
	}
	m.set = func(parent, value any) { *access(parent.(*T)) = value.(bool) }
	return m
}

// Bytes declares an opaque byte-payload member.
func Bytes[T any](name string, token int, access func(*T) *[]byte, opts ...MemberOption) *Member {
	m := newMember(name, token, KindBytes, opts)
	m.get = func(parent any) any {
		if data := *access(parent.(*T)); len(data) > 0 {
			return data
		}
		return nil
	}
	m.set = func(parent, value any) { *access(parent.(*T)) = value.([]byte) }
	return m
}

// Object declares a nested bound-object member. C must itself be
// bound in the same registry.
func Object[T, C any](name string, token int, access func(*T) **C, opts ...MemberOption) *Member {
	m := newMember(name, token, KindObject, opts)
	m.elemType = reflect.TypeOf((*C)(nil))
	m.get = func(parent any) any {
		if child := *access(parent.(*T)); child != nil {
			return child
		}
		return nil
	}
	m.set = func(parent, value any) { *access(parent.(*T)) = value.(*C) }
	m.newElem = func() any { return new(C) }
	return m
}

// Any declares an untyped scalar slot. On decode it receives inline
// text as a string, and opaque payloads as raw bytes when they form a
// nested document, as a string otherwise.
func Any[T any](name string, token int, access func(*T) *any, opts ...MemberOption) *Member {
	m := newMember(name, token, KindAny, opts)
	m.get = func(parent any) any { return *access(parent.(*T)) }
	m.set = func(parent, value any) { *access(parent.(*T)) = value }
	return m
}

// Value declares a generic element-carrier scalar.
func Value[T any](name string, token int, access func(*T) **wbxml.Value, opts ...MemberOption) *Member {
	m := newMember(name, token, KindValue, opts)
	m.get = func(parent any) any {
		if v := *access(parent.(*T)); v != nil {
			return v
		}
		return nil
	}
	m.set = func(parent, value any) { *access(parent.(*T)) = value.(*wbxml.Value) }
	return m
}

// OpaqueObject declares a typed member carried as an opaque payload
// through codec.
func OpaqueObject[T, C any](name string, token int, codec OpaqueCodec, access func(*T) **C, opts ...MemberOption) *Member {
	m := newMember(name, token, KindOpaque, opts)
	m.Codec = codec
	m.elemType = reflect.TypeOf((*C)(nil))
	m.get = func(parent any) any {
		if child := *access(parent.(*T)); child != nil {
			return child
		}
		return nil
	}
	m.set = func(parent, value any) { *access(parent.(*T)) = value.(*C) }
	m.newElem = func() any { return new(C) }
	return m
}

// Strings declares a collection of strings. With a wrapper token the
// items are written bare inside one wrapper element; with NoToken the
// member is a ghost and each item is bracketed by itemToken.
func Strings[T any](name string, token, itemToken int, access func(*T) *[]string, opts ...MemberOption) *Member {
	m := newMember(name, token, KindString, opts)
	m.Collection = true
	m.ItemToken = itemToken
	m.get = func(parent any) any {
		if items := *access(parent.(*T)); len(items) > 0 {
			return items
		}
		return nil
	}
	m.add = func(parent, item any) {
		field := access(parent.(*T))
		*field = append(*field, item.(string))
	}
	m.items = func(parent any) []any {
		source := *access(parent.(*T))
		items := make([]any, len(source))
		for i, s := range source {
			items[i] = s
		}
		return items
	}
	return m
}

// Objects declares a collection of bound objects. A ghost member
// (token == NoToken) brackets each item with the item binding's own
// root token; a wrapped member emits one wrapper element around the
// items' contents.
func Objects[T, C any](name string, token int, access func(*T) *[]*C, opts ...MemberOption) *Member {
	m := newMember(name, token, KindObject, opts)
	m.Collection = true
	m.elemType = reflect.TypeOf((*C)(nil))
	m.get = func(parent any) any {
		if items := *access(parent.(*T)); len(items) > 0 {
			return items
		}
		return nil
	}
	m.add = func(parent, item any) {
		field := access(parent.(*T))
		*field = append(*field, item.(*C))
	}
	m.items = func(parent any) []any {
		source := *access(parent.(*T))
		items := make([]any, len(source))
		for i, item := range source {
			items[i] = item
		}
		return items
	}
	m.newElem = func() any { return new(C) }
	return m
}

// Values declares a collection of generic element carriers. Every
// element arriving for this member is captured as a *wbxml.Value with
// its page, token, and payload preserved.
func Values[T any](name string, token int, access func(*T) *[]*wbxml.Value, opts ...MemberOption) *Member {
	m := newMember(name, token, KindValue, opts)
	m.Collection = true
	m.get = func(parent any) any {
		if items := *access(parent.(*T)); len(items) > 0 {
			return items
		}
		return nil
	}
	m.add = func(parent, item any) {
		field := access(parent.(*T))
		*field = append(*field, item.(*wbxml.Value))
	}
	m.items = func(parent any) []any {
		source := *access(parent.(*T))
		items := make([]any, len(source))
		for i, item := range source {
			items[i] = item
		}
		return items
	}
	return m
}

// AnyList declares an untyped collection. Item types are chosen at
// decode time by the code page's model overrides; at encode time each
// item must be a string, a *wbxml.Value, or a bound object.
func AnyList[T any](name string, token int, access func(*T) *[]any, opts ...MemberOption) *Member {
	m := newMember(name, token, KindAny, opts)
	m.Collection = true
	m.get = func(parent any) any {
		if items := *access(parent.(*T)); len(items) > 0 {
			return items
		}
		return nil
	}
	m.add = func(parent, item any) {
		field := access(parent.(*T))
		*field = append(*field, item)
	}
	m.items = func(parent any) []any {
		return slices.Clone(*access(parent.(*T)))
	}
	return m
}
