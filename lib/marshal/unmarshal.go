// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package marshal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/bureau-foundation/wbxml/lib/schema"
	"github.com/bureau-foundation/wbxml/lib/wbxml"
	"github.com/bureau-foundation/wbxml/lib/wire"
)

// Unmarshal reads one WBXML document from r into target, which must
// be a pointer to a bound type. The first start element is the root
// bracket and populates target directly; nested elements materialize
// child objects lazily as their brackets arrive.
func (m *Marshaller) Unmarshal(ctx *wbxml.Context, r io.Reader, target any) error {
	ctx.Reset()

	binding, ok := m.registry.BindingFor(target)
	if !ok {
		return &wbxml.Error{
			Kind:   wbxml.KindSchemaMissing,
			Detail: fmt.Sprintf("target value %T has no binding", target),
		}
	}

	decoder := wire.NewDecoder(r, m.registry)
	stack := []*frame{{
		kind:       frameObject,
		name:       binding.Name,
		target:     target,
		candidates: binding.Members,
	}}

	root := true
	for {
		event, err := decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return decodeError(stack, err)
		}
		if ctx.CaptureXML {
			captureEvent(ctx, event)
		}

		switch event.Type {
		case wire.StartElement:
			if root {
				// The root bracket maps onto the caller-supplied
				// target; the bottom frame already represents it.
				root = false
				continue
			}
			if len(stack) == 0 {
				return &wbxml.Error{Kind: wbxml.KindMalformed, Detail: "element after document end"}
			}
			if err := m.startElement(event, &stack); err != nil {
				return err
			}

		case wire.Text:
			if len(stack) == 0 {
				return &wbxml.Error{Kind: wbxml.KindMalformed, Detail: "text after document end"}
			}
			if err := m.textEvent(event, stack); err != nil {
				return err
			}

		case wire.Opaque:
			if len(stack) == 0 {
				return &wbxml.Error{Kind: wbxml.KindMalformed, Detail: "opaque after document end"}
			}
			if err := m.opaqueEvent(event, stack); err != nil {
				return err
			}

		case wire.EndElement:
			if len(stack) == 0 {
				return &wbxml.Error{Kind: wbxml.KindMalformed, Detail: "unbalanced end element"}
			}
			stack = stack[:len(stack)-1]
		}
	}
}

// startElement resolves an incoming element against the top frame and
// pushes the frame that will receive the element's content.
func (m *Marshaller) startElement(event *wire.Event, stack *[]*frame) error {
	cp := event.Field
	parent := (*stack)[len(*stack)-1]

	member := parent.findMember(cp)
	if member == nil {
		return &wbxml.Error{
			Kind:   wbxml.KindUnmappedElement,
			Path:   breadcrumb(*stack, cp.Name),
			Detail: fmt.Sprintf("no member accepts %s", cp),
		}
	}

	if member.Collection {
		return m.startCollectionItem(cp, member, parent, stack)
	}

	switch member.Kind {
	case schema.KindObject:
		// Scalar nesting follows the member's declared type; model
		// overrides apply to collections only.
		child, _ := member.NewElem()
		childBinding, ok := m.registry.BindingFor(child)
		if !ok {
			return &wbxml.Error{
				Kind:   wbxml.KindSchemaMissing,
				Path:   breadcrumb(*stack, cp.Name),
				Detail: fmt.Sprintf("nested element type %T has no binding", child),
			}
		}
		member.Assign(parent.target, child)
		*stack = append(*stack, &frame{
			kind:       frameObject,
			name:       cp.Name,
			target:     child,
			candidates: childBinding.Members,
		})

	case schema.KindBool:
		// Presence is the value; the placeholder keeps the bracket
		// balanced.
		member.Assign(parent.target, true)
		*stack = append(*stack, &frame{
			kind:       framePlaceholder,
			name:       cp.Name,
			target:     parent.target,
			candidates: []*schema.Member{member},
		})

	case schema.KindValue:
		value := &wbxml.Value{Page: cp.Page, Token: cp.Token, Name: cp.Name}
		member.Assign(parent.target, value)
		*stack = append(*stack, &frame{kind: frameValue, name: cp.Name, value: value})

	default:
		// String, Int, Bytes, Any, Opaque: the payload arrives with
		// the coming Text or Opaque event.
		*stack = append(*stack, &frame{
			kind:       frameScalar,
			name:       cp.Name,
			target:     parent.target,
			candidates: []*schema.Member{member},
		})
	}
	return nil
}

// startCollectionItem creates one collection item for an incoming
// element: the wrapper element of a wrapped collection, or one item
// bracket of a ghost collection.
func (m *Marshaller) startCollectionItem(cp wire.CodePageField, member *schema.Member, parent *frame, stack *[]*frame) error {
	switch member.Kind {
	case schema.KindString:
		// Items are bare strings; Text events append them directly.
		*stack = append(*stack, &frame{
			kind:   frameCollection,
			name:   cp.Name,
			target: parent.target,
			member: member,
		})
		return nil

	case schema.KindValue:
		value := &wbxml.Value{Page: cp.Page, Token: cp.Token, Name: cp.Name}
		member.Append(parent.target, value)
		*stack = append(*stack, &frame{kind: frameValue, name: cp.Name, value: value})
		return nil

	default:
		var item any
		var itemBinding *schema.TypeBinding
		if model, ok := cp.Model.(*schema.TypeBinding); ok && model != nil {
			itemBinding = model
			item = model.New()
		} else if created, ok := member.NewElem(); ok {
			item = created
			itemBinding, ok = m.registry.BindingFor(item)
			if !ok {
				return &wbxml.Error{
					Kind:   wbxml.KindSchemaMissing,
					Path:   breadcrumb(*stack, cp.Name),
					Detail: fmt.Sprintf("collection item type %T has no binding", item),
				}
			}
		} else {
			return &wbxml.Error{
				Kind:   wbxml.KindUnmappedElement,
				Path:   breadcrumb(*stack, cp.Name),
				Detail: fmt.Sprintf("untyped collection has no model override for %s", cp),
			}
		}
		member.Append(parent.target, item)
		*stack = append(*stack, &frame{
			kind:       frameObject,
			name:       cp.Name,
			target:     item,
			candidates: itemBinding.Members,
		})
		return nil
	}
}

// textEvent routes inline string content to the top frame.
func (m *Marshaller) textEvent(event *wire.Event, stack []*frame) error {
	top := stack[len(stack)-1]

	switch top.kind {
	case frameCollection:
		top.member.Append(top.target, event.Text)
		return nil

	case frameValue:
		top.value.Text += event.Text
		return nil

	default:
		member := top.findMember(event.Field)
		if member == nil {
			// Tolerant path: stray text is dropped, never fatal.
			slog.Debug("no mapping for text content", "element", event.Field.Name)
			return nil
		}
		return assignText(member, top, event, stack)
	}
}

// assignText converts inline text to the member's kind and assigns.
func assignText(member *schema.Member, top *frame, event *wire.Event, stack []*frame) error {
	switch member.Kind {
	case schema.KindString:
		member.Assign(top.target, event.Text)
	case schema.KindInt:
		parsed, err := strconv.Atoi(event.Text)
		if err != nil {
			return &wbxml.Error{
				Kind:   wbxml.KindMalformed,
				Path:   breadcrumb(stack, ""),
				Detail: fmt.Sprintf("integer member received %q", event.Text),
				Err:    err,
			}
		}
		member.Assign(top.target, parsed)
	case schema.KindAny:
		member.Assign(top.target, event.Text)
	default:
		slog.Debug("text content for non-text member ignored",
			"element", event.Field.Name, "member", member.Name)
	}
	return nil
}

// opaqueEvent routes an opaque payload to the top frame.
func (m *Marshaller) opaqueEvent(event *wire.Event, stack []*frame) error {
	top := stack[len(stack)-1]
	payload := event.Opaque

	var member *schema.Member
	if top.kind == frameObject || top.kind == frameScalar || top.kind == framePlaceholder {
		member = top.findMember(event.Field)
	}

	if member != nil {
		switch member.Kind {
		case schema.KindString:
			member.Assign(top.target, string(payload))
		case schema.KindBytes:
			member.Assign(top.target, payload)
		case schema.KindInt:
			parsed, err := strconv.Atoi(string(payload))
			if err != nil {
				return &wbxml.Error{
					Kind:   wbxml.KindMalformed,
					Path:   breadcrumb(stack, ""),
					Detail: fmt.Sprintf("integer member received opaque %q", payload),
					Err:    err,
				}
			}
			member.Assign(top.target, parsed)
		case schema.KindAny:
			// A payload that is itself a WBXML document stays raw;
			// anything else is reinterpreted as text.
			if wire.IsDocument(payload) {
				member.Assign(top.target, payload)
			} else {
				member.Assign(top.target, string(payload))
			}
		case schema.KindOpaque:
			if member.Codec == nil {
				return &wbxml.Error{
					Kind:   wbxml.KindUnsupportedOpaqueTarget,
					Path:   breadcrumb(stack, ""),
					Detail: fmt.Sprintf("member %s has no inner codec", member.Name),
				}
			}
			item, _ := member.NewElem()
			if err := member.Codec.Unmarshal(payload, item); err != nil {
				return &wbxml.Error{
					Kind:   wbxml.KindMalformed,
					Path:   breadcrumb(stack, ""),
					Detail: "inner codec failed to decode payload",
					Err:    err,
				}
			}
			member.Assign(top.target, item)
		default:
			return &wbxml.Error{
				Kind:   wbxml.KindUnsupportedOpaqueTarget,
				Path:   breadcrumb(stack, ""),
				Detail: fmt.Sprintf("opaque payload for %s member %s", kindName(member.Kind), member.Name),
			}
		}
		return nil
	}

	switch top.kind {
	case frameValue:
		top.value.Opaque = payload
		return nil
	case frameCollection:
		if top.member.Kind == schema.KindString {
			top.member.Append(top.target, string(payload))
			return nil
		}
	}
	return &wbxml.Error{
		Kind:   wbxml.KindUnmappedOpaque,
		Path:   breadcrumb(stack, ""),
		Detail: fmt.Sprintf("opaque payload inside %s has no assignable target", event.Field),
	}
}

// captureEvent appends the diagnostic XML trace for one event. Opaque
// payloads have no textual form and are skipped.
func captureEvent(ctx *wbxml.Context, event *wire.Event) {
	switch event.Type {
	case wire.StartElement:
		ctx.AppendXML("<" + event.Field.Name + ">")
	case wire.Text:
		ctx.AppendXML(event.Text)
	case wire.EndElement:
		ctx.AppendXML("</" + event.Field.Name + ">")
	}
}

// decodeError classifies a decoder failure: format violations are
// malformed documents, everything else is a stream failure.
func decodeError(stack []*frame, err error) error {
	kind := wbxml.KindIoFailure
	var formatErr *wire.FormatError
	if errors.As(err, &formatErr) {
		kind = wbxml.KindMalformed
	}
	return &wbxml.Error{Kind: kind, Path: breadcrumb(stack, ""), Err: err}
}

func kindName(kind schema.Kind) string {
	switch kind {
	case schema.KindString:
		return "string"
	case schema.KindInt:
		return "integer"
	case schema.KindBool:
		return "boolean"
	case schema.KindBytes:
		return "bytes"
	case schema.KindObject:
		return "object"
	case schema.KindValue:
		return "value"
	case schema.KindAny:
		return "untyped"
	case schema.KindOpaque:
		return "opaque-coded"
	default:
		return "unknown"
	}
}
