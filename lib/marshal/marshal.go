// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package marshal

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/bureau-foundation/wbxml/lib/schema"
	"github.com/bureau-foundation/wbxml/lib/wbxml"
	"github.com/bureau-foundation/wbxml/lib/wire"
)

// Marshaller converts between bound object graphs and WBXML byte
// streams using a sealed schema registry. It holds no per-call state
// and is safe for concurrent use; each call owns its Context and its
// stream.
type Marshaller struct {
	registry *schema.Registry
}

// New returns a Marshaller over registry.
func New(registry *schema.Registry) *Marshaller {
	return &Marshaller{registry: registry}
}

// Marshal writes root as a complete WBXML document to w. The root's
// type must be bound; its binding supplies the document's public
// identifier and the root element. With a non-empty filter set, only
// members whose filter tags intersect it are emitted; with no
// filters, every member is.
func (m *Marshaller) Marshal(ctx *wbxml.Context, w io.Writer, root any, filters ...string) error {
	ctx.Reset()

	binding, ok := m.registry.BindingFor(root)
	if !ok {
		return &wbxml.Error{
			Kind:   wbxml.KindSchemaMissing,
			Detail: fmt.Sprintf("root value %T has no binding", root),
		}
	}
	if binding.Page == nil {
		return &wbxml.Error{
			Kind:   wbxml.KindPageMissing,
			Detail: fmt.Sprintf("binding %q declares no code page", binding.Name),
		}
	}

	encoder := wire.NewEncoder(w)
	if err := m.writePreamble(ctx, encoder, binding.Page); err != nil {
		return streamError(nil, err)
	}
	if err := m.emitBound(ctx, encoder, root, binding, binding.Token, nil, filters); err != nil {
		return err
	}
	if err := encoder.Finalize(); err != nil {
		return streamError(nil, err)
	}
	return nil
}

// writePreamble emits the document header: version, public id,
// charset, and an empty string table. Unset context parameters fall
// back to WBXML 1.2 and UTF-8 with a warning.
func (m *Marshaller) writePreamble(ctx *wbxml.Context, encoder *wire.Encoder, page *schema.CodePage) error {
	version := ctx.Version
	if version == 0 {
		slog.Warn("no WBXML version set in context, defaulting to 1.2")
		version = wbxml.Version12
	}
	if page.PublicID == 0 {
		slog.Warn("document public identifier is zero, recipient may reject", "page", page.Name)
	}
	charset := ctx.Charset
	if charset == 0 {
		slog.Warn("no document charset set in context, defaulting to UTF-8")
		charset = wbxml.CharsetUTF8
	}

	if err := encoder.WriteVersion(version); err != nil {
		return err
	}
	if err := encoder.WritePublicID(page.PublicID); err != nil {
		return err
	}
	if err := encoder.WriteCharset(charset); err != nil {
		return err
	}
	return encoder.WriteStringTable(0)
}

// emitBound emits one bound object: the page switch when its page
// differs from the active one, the bracket element when bracketToken
// is non-negative, the members in declaration order, and the
// restoring switch on the way out. The switch precedes the opening
// token so the decoder reads the token in the page it belongs to.
func (m *Marshaller) emitBound(ctx *wbxml.Context, encoder *wire.Encoder, value any, binding *schema.TypeBinding, bracketToken int, path []string, filters []string) error {
	if binding.Page == nil {
		return &wbxml.Error{
			Kind:   wbxml.KindPageMissing,
			Path:   path,
			Detail: fmt.Sprintf("binding %q declares no code page", binding.Name),
		}
	}

	switched := false
	if active, ok := ctx.ActivePage(); !ok || active != binding.Page.Index {
		if err := encoder.SwitchPage(binding.Page.Index); err != nil {
			return streamError(path, err)
		}
		ctx.PushPage(binding.Page.Index)
		switched = true
	}

	if bracketToken >= 0 {
		if err := encoder.PushElement(bracketToken, true); err != nil {
			return streamError(path, err)
		}
	}
	for _, member := range binding.Members {
		if err := m.emitMember(ctx, encoder, value, member, path, filters); err != nil {
			return err
		}
	}
	if bracketToken >= 0 {
		if err := encoder.PopElement(); err != nil {
			return streamError(path, err)
		}
	}

	if switched {
		ctx.PopPage()
		if restored, ok := ctx.ActivePage(); ok {
			if err := encoder.SwitchPage(restored); err != nil {
				return streamError(path, err)
			}
		}
	}
	return nil
}

// emitMember emits one member of a bound object, or nothing when the
// member is absent or filtered out.
func (m *Marshaller) emitMember(ctx *wbxml.Context, encoder *wire.Encoder, parent any, member *schema.Member, path []string, filters []string) error {
	memberPath := extendPath(path, member.Name)

	value := member.ValueOf(parent)
	if value == nil {
		if member.Required {
			return &wbxml.Error{
				Kind:   wbxml.KindRequiredMissing,
				Path:   memberPath,
				Detail: "member is marked required but is nil or empty",
			}
		}
		return nil
	}
	if !filterMatch(member, filters) {
		return nil
	}

	if member.Collection {
		return m.emitCollection(ctx, encoder, parent, member, memberPath, filters)
	}

	switch member.Kind {
	case schema.KindString:
		return m.emitTextElement(ctx, encoder, member.Token, value.(string), memberPath)

	case schema.KindInt:
		return m.emitTextElement(ctx, encoder, member.Token, strconv.Itoa(value.(int)), memberPath)

	case schema.KindBool:
		// Presence-coded: the empty element is the value.
		if err := encoder.PushElement(member.Token, false); err != nil {
			return streamError(memberPath, err)
		}
		return nil

	case schema.KindBytes:
		if err := encoder.PushOpaque(member.Token, value.([]byte)); err != nil {
			return streamError(memberPath, err)
		}
		return nil

	case schema.KindOpaque:
		payload, err := member.Codec.Marshal(value)
		if err != nil {
			return &wbxml.Error{
				Kind:   wbxml.KindUnsupportedOpaqueTarget,
				Path:   memberPath,
				Detail: "inner codec failed to encode member",
				Err:    err,
			}
		}
		if err := encoder.PushOpaque(member.Token, payload); err != nil {
			return streamError(memberPath, err)
		}
		return nil

	case schema.KindObject:
		childBinding, ok := m.registry.BindingFor(value)
		if !ok {
			return &wbxml.Error{
				Kind:   wbxml.KindSchemaMissing,
				Path:   memberPath,
				Detail: fmt.Sprintf("nested value %T has no binding", value),
			}
		}
		bracket := member.Token
		if member.Ghost() {
			bracket = childBinding.Token
		}
		return m.emitBound(ctx, encoder, value, childBinding, bracket, memberPath, filters)

	case schema.KindValue:
		return m.emitValue(ctx, encoder, member.Token, value.(*wbxml.Value), memberPath)

	case schema.KindAny:
		return m.emitAny(ctx, encoder, member, value, memberPath, filters)

	default:
		return &wbxml.Error{
			Kind:   wbxml.KindSchemaMissing,
			Path:   memberPath,
			Detail: fmt.Sprintf("member has unhandled kind %d", member.Kind),
		}
	}
}

// emitCollection emits a repeated member. A wrapped collection emits
// one wrapper element around all item content; a ghost collection
// emits each bound item under its own root bracket and each string
// item under the member's item token.
func (m *Marshaller) emitCollection(ctx *wbxml.Context, encoder *wire.Encoder, parent any, member *schema.Member, path []string, filters []string) error {
	items := member.Items(parent)
	ghost := member.Ghost()

	if !ghost {
		if err := encoder.PushElement(member.Token, true); err != nil {
			return streamError(path, err)
		}
	}
	for _, item := range items {
		switch it := item.(type) {
		case string:
			if ghost && member.ItemToken != schema.NoToken {
				if err := m.emitTextElement(ctx, encoder, member.ItemToken, it, path); err != nil {
					return err
				}
			} else {
				if err := m.writeString(ctx, encoder, it, path); err != nil {
					return err
				}
			}

		case *wbxml.Value:
			if ghost {
				if err := m.emitCapturedValue(ctx, encoder, it, path); err != nil {
					return err
				}
			} else {
				if err := m.writeValuePayload(ctx, encoder, it, path); err != nil {
					return err
				}
			}

		default:
			itemBinding, ok := m.registry.BindingFor(item)
			if !ok {
				return &wbxml.Error{
					Kind:   wbxml.KindSchemaMissing,
					Path:   path,
					Detail: fmt.Sprintf("collection item %T has no binding", item),
				}
			}
			bracket := -1
			if ghost {
				bracket = itemBinding.Token
			}
			if err := m.emitBound(ctx, encoder, item, itemBinding, bracket, path, filters); err != nil {
				return err
			}
		}
	}
	if !ghost {
		if err := encoder.PopElement(); err != nil {
			return streamError(path, err)
		}
	}
	return nil
}

// emitAny emits an untyped slot by the concrete shape of its value.
func (m *Marshaller) emitAny(ctx *wbxml.Context, encoder *wire.Encoder, member *schema.Member, value any, path []string, filters []string) error {
	switch v := value.(type) {
	case string:
		return m.emitTextElement(ctx, encoder, member.Token, v, path)
	case []byte:
		if err := encoder.PushOpaque(member.Token, v); err != nil {
			return streamError(path, err)
		}
		return nil
	case *wbxml.Value:
		return m.emitValue(ctx, encoder, member.Token, v, path)
	default:
		if binding, ok := m.registry.BindingFor(value); ok {
			return m.emitBound(ctx, encoder, value, binding, member.Token, path, filters)
		}
		return m.emitTextElement(ctx, encoder, member.Token, fmt.Sprint(v), path)
	}
}

// emitValue emits a captured value's payload under the given token.
func (m *Marshaller) emitValue(ctx *wbxml.Context, encoder *wire.Encoder, token int, value *wbxml.Value, path []string) error {
	if err := encoder.PushElement(token, true); err != nil {
		return streamError(path, err)
	}
	if err := m.writeValuePayload(ctx, encoder, value, path); err != nil {
		return err
	}
	if err := encoder.PopElement(); err != nil {
		return streamError(path, err)
	}
	return nil
}

// emitCapturedValue replays a captured value under its own recorded
// page and token.
func (m *Marshaller) emitCapturedValue(ctx *wbxml.Context, encoder *wire.Encoder, value *wbxml.Value, path []string) error {
	switched := false
	if active, ok := ctx.ActivePage(); !ok || active != value.Page {
		if err := encoder.SwitchPage(value.Page); err != nil {
			return streamError(path, err)
		}
		ctx.PushPage(value.Page)
		switched = true
	}

	if err := m.emitValue(ctx, encoder, value.Token, value, path); err != nil {
		return err
	}

	if switched {
		ctx.PopPage()
		if restored, ok := ctx.ActivePage(); ok {
			if err := encoder.SwitchPage(restored); err != nil {
				return streamError(path, err)
			}
		}
	}
	return nil
}

// writeValuePayload writes a captured value's content: inline text
// first when present, then the opaque payload.
func (m *Marshaller) writeValuePayload(ctx *wbxml.Context, encoder *wire.Encoder, value *wbxml.Value, path []string) error {
	if value.Text != "" {
		if err := m.writeString(ctx, encoder, value.Text, path); err != nil {
			return err
		}
	}
	if len(value.Opaque) > 0 {
		if err := encoder.Opaque(value.Opaque); err != nil {
			return streamError(path, err)
		}
	}
	return nil
}

// emitTextElement emits a complete element carrying one string.
func (m *Marshaller) emitTextElement(ctx *wbxml.Context, encoder *wire.Encoder, token int, s string, path []string) error {
	if err := encoder.PushElement(token, true); err != nil {
		return streamError(path, err)
	}
	if err := m.writeString(ctx, encoder, s, path); err != nil {
		return err
	}
	if err := encoder.PopElement(); err != nil {
		return streamError(path, err)
	}
	return nil
}

// writeString writes s inline, or as an opaque payload when the
// context requests opaque strings.
func (m *Marshaller) writeString(ctx *wbxml.Context, encoder *wire.Encoder, s string, path []string) error {
	var err error
	if ctx.OpaqueStrings {
		err = encoder.Opaque([]byte(s))
	} else {
		err = encoder.InlineString(s)
	}
	if err != nil {
		return streamError(path, err)
	}
	return nil
}

// filterMatch applies the permissive-on-empty filter rule: an empty
// caller set emits everything; a non-empty set emits only members
// whose tags intersect it.
func filterMatch(member *schema.Member, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, tag := range member.Filters {
		for _, filter := range filters {
			if tag == filter {
				return true
			}
		}
	}
	return false
}

// extendPath returns path + name without sharing the backing array
// with sibling members.
func extendPath(path []string, name string) []string {
	extended := make([]string, 0, len(path)+1)
	extended = append(extended, path...)
	return append(extended, name)
}

// streamError wraps an encoder or stream failure.
func streamError(path []string, err error) error {
	return &wbxml.Error{Kind: wbxml.KindIoFailure, Path: path, Err: err}
}
