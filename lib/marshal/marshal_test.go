// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package marshal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bureau-foundation/wbxml/lib/schema"
	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

// pingDoc is the minimal single-page fixture: one string member on
// page 13.
type pingDoc struct {
	HeartbeatInterval string
}

func pingRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	page := schema.NewCodePage(13, "Ping", 1)
	page.Define(0x0B, "Foreign")
	r.AddPage(page)
	schema.Bind[pingDoc](r, "Ping", 13, 0x05,
		schema.String("HeartbeatInterval", 0x0A,
			func(p *pingDoc) *string { return &p.HeartbeatInterval }),
	)
	if err := r.Seal(); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return r
}

// crossDoc nests a child bound to a different page.
type crossChild struct {
	Name string
}

type crossDoc struct {
	Child *crossChild
}

func crossRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	r.AddPage(schema.NewCodePage(0, "Root", 1))
	r.AddPage(schema.NewCodePage(1, "Child", 1))
	schema.Bind[crossDoc](r, "Root", 0, 0x05,
		schema.Object[crossDoc, crossChild]("Child", 0x06,
			func(d *crossDoc) **crossChild { return &d.Child }),
	)
	schema.Bind[crossChild](r, "Child", 1, 0x06,
		schema.String("Name", 0x07,
			func(c *crossChild) *string { return &c.Name }),
	)
	if err := r.Seal(); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return r
}

// featureDoc exercises ghost string collections, booleans, integers,
// bytes, and filter tags on one page.
type featureDoc struct {
	Filters  []string
	Armed    bool
	Window   int
	Payload  []byte
	Public   string
	Internal string
}

func featureRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	r.AddPage(schema.NewCodePage(5, "Features", 1))
	schema.Bind[featureDoc](r, "Features", 5, 0x05,
		schema.Strings[featureDoc]("Filter", schema.NoToken, 0x12,
			func(d *featureDoc) *[]string { return &d.Filters }),
		schema.Bool("Armed", 0x13,
			func(d *featureDoc) *bool { return &d.Armed }),
		schema.Int("Window", 0x14,
			func(d *featureDoc) *int { return &d.Window }),
		schema.Bytes("Payload", 0x15,
			func(d *featureDoc) *[]byte { return &d.Payload }),
		schema.String("Public", 0x16,
			func(d *featureDoc) *string { return &d.Public },
			schema.WithFilters("public")),
		schema.String("Internal", 0x17,
			func(d *featureDoc) *string { return &d.Internal },
			schema.WithFilters("internal")),
	)
	if err := r.Seal(); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	return r
}

func TestMarshalScalarDocument(t *testing.T) {
	m := New(pingRegistry(t))

	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := m.Marshal(&ctx, &buffer, &pingDoc{HeartbeatInterval: "480"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := []byte{
		0x03, 0x01, 0x6A, 0x00, // version 1.2, public id 1, UTF-8, empty table
		0x00, 0x0D, // SWITCH_PAGE 13
		0x45,                      // <Ping>
		0x4A,                      // <HeartbeatInterval>
		0x03, '4', '8', '0', 0x00, // STR_I "480"
		0x01, 0x01, // </HeartbeatInterval> </Ping>
	}
	if !bytes.Equal(buffer.Bytes(), want) {
		t.Errorf("document = % X\nwant       % X", buffer.Bytes(), want)
	}
	if ctx.PageDepth() != 0 {
		t.Errorf("page stack depth after marshal = %d, want 0", ctx.PageDepth())
	}
}

func TestMarshalCrossPageSwitch(t *testing.T) {
	m := New(crossRegistry(t))

	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := m.Marshal(&ctx, &buffer, &crossDoc{Child: &crossChild{Name: "x"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := []byte{
		0x03, 0x01, 0x6A, 0x00,
		0x00, 0x00, // switch to page 0
		0x45,       // <Root>
		0x00, 0x01, // switch to page 1, before the child's token
		0x46,                 // <Child>
		0x47,                 // <Name>
		0x03, 'x', 0x00, // STR_I "x"
		0x01,       // </Name>
		0x01,       // </Child>
		0x00, 0x00, // switch back to page 0
		0x01, // </Root>
	}
	if !bytes.Equal(buffer.Bytes(), want) {
		t.Errorf("document = % X\nwant       % X", buffer.Bytes(), want)
	}
}

func TestMarshalSamePageNesting(t *testing.T) {
	// Nested objects on the root's page must not emit switches
	// beyond the single leading one.
	r := schema.NewRegistry()
	r.AddPage(schema.NewCodePage(7, "Folders", 1))
	type folder struct{ Name string }
	type folderSync struct{ Folder *folder }
	schema.Bind[folderSync](r, "FolderSync", 7, 0x05,
		schema.Object[folderSync, folder]("Folder", 0x07,
			func(f *folderSync) **folder { return &f.Folder }),
	)
	schema.Bind[folder](r, "Folder", 7, 0x07,
		schema.String("Name", 0x08,
			func(f *folder) *string { return &f.Name }),
	)
	if err := r.Seal(); err != nil {
		t.Fatalf("Seal: %v", err)
	}

	var buffer bytes.Buffer
	var ctx wbxml.Context
	m := New(r)
	if err := m.Marshal(&ctx, &buffer, &folderSync{Folder: &folder{Name: "inbox"}}); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	switches := bytes.Count(buffer.Bytes(), []byte{0x00, 0x07})
	if switches != 1 {
		t.Errorf("got %d switches to page 7, want only the leading one", switches)
	}
}

func TestMarshalGhostStringCollection(t *testing.T) {
	m := New(featureRegistry(t))

	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := m.Marshal(&ctx, &buffer, &featureDoc{Filters: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Each item gets its own bracket; there is no wrapper element.
	wantBody := []byte{
		0x52, 0x03, 'a', 0x00, 0x01,
		0x52, 0x03, 'b', 0x00, 0x01,
	}
	if !bytes.Contains(buffer.Bytes(), wantBody) {
		t.Errorf("document % X should contain % X", buffer.Bytes(), wantBody)
	}
	if n := bytes.Count(buffer.Bytes(), []byte{0x52}); n != 2 {
		t.Errorf("got %d item brackets, want 2", n)
	}
}

func TestMarshalBoolean(t *testing.T) {
	m := New(featureRegistry(t))

	var armed bytes.Buffer
	var ctx wbxml.Context
	if err := m.Marshal(&ctx, &armed, &featureDoc{Armed: true}); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// Empty element: token without the content bit, no END of its own.
	if !bytes.Contains(armed.Bytes(), []byte{0x13}) {
		t.Errorf("armed document % X should contain empty element 13", armed.Bytes())
	}
	if bytes.Contains(armed.Bytes(), []byte{0x53}) {
		t.Errorf("armed document % X should not open element 13 with content", armed.Bytes())
	}

	var disarmed bytes.Buffer
	if err := m.Marshal(&ctx, &disarmed, &featureDoc{Armed: false}); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if bytes.Contains(disarmed.Bytes(), []byte{0x13}) {
		t.Errorf("false boolean should emit nothing, got % X", disarmed.Bytes())
	}
}

func TestMarshalBytesAsOpaque(t *testing.T) {
	m := New(featureRegistry(t))

	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := m.Marshal(&ctx, &buffer, &featureDoc{Payload: []byte{0xDE, 0xAD}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := []byte{0x55, 0xC3, 0x02, 0xDE, 0xAD, 0x01}
	if !bytes.Contains(buffer.Bytes(), want) {
		t.Errorf("document % X should contain % X", buffer.Bytes(), want)
	}
}

func TestMarshalOpaqueStrings(t *testing.T) {
	m := New(pingRegistry(t))

	var buffer bytes.Buffer
	ctx := wbxml.Context{OpaqueStrings: true}
	err := m.Marshal(&ctx, &buffer, &pingDoc{HeartbeatInterval: "480"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if bytes.Contains(buffer.Bytes(), []byte{0x03, '4', '8', '0', 0x00}) {
		t.Errorf("opaque-strings document % X should not contain STR_I", buffer.Bytes())
	}
	if !bytes.Contains(buffer.Bytes(), []byte{0xC3, 0x03, '4', '8', '0'}) {
		t.Errorf("document % X should carry the string as OPAQUE", buffer.Bytes())
	}
}

func TestMarshalFilters(t *testing.T) {
	m := New(featureRegistry(t))
	document := &featureDoc{Public: "yes", Internal: "secret"}

	marshalWith := func(filters ...string) []byte {
		t.Helper()
		var buffer bytes.Buffer
		var ctx wbxml.Context
		if err := m.Marshal(&ctx, &buffer, document, filters...); err != nil {
			t.Fatalf("Marshal(%v): %v", filters, err)
		}
		return buffer.Bytes()
	}

	// No filters: everything is emitted.
	all := marshalWith()
	if !bytes.Contains(all, []byte("yes")) || !bytes.Contains(all, []byte("secret")) {
		t.Errorf("unfiltered document % X should contain both members", all)
	}

	// A filter set emits only members whose tags intersect it.
	public := marshalWith("public")
	if !bytes.Contains(public, []byte("yes")) {
		t.Errorf("public document % X should contain the public member", public)
	}
	if bytes.Contains(public, []byte("secret")) {
		t.Errorf("public document % X should not contain the internal member", public)
	}
}

func TestMarshalRequiredMissing(t *testing.T) {
	type strictDoc struct {
		ID string
	}
	r := schema.NewRegistry()
	r.AddPage(schema.NewCodePage(0, "Strict", 1))
	schema.Bind[strictDoc](r, "Strict", 0, 0x05,
		schema.String("Id", 0x06,
			func(d *strictDoc) *string { return &d.ID },
			schema.Required()),
	)
	if err := r.Seal(); err != nil {
		t.Fatalf("Seal: %v", err)
	}

	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := New(r).Marshal(&ctx, &buffer, &strictDoc{})
	if !wbxml.IsKind(err, wbxml.KindRequiredMissing) {
		t.Fatalf("want RequiredMissing, got %v", err)
	}
	var codecErr *wbxml.Error
	if !errors.As(err, &codecErr) || len(codecErr.Path) == 0 || codecErr.Path[len(codecErr.Path)-1] != "Id" {
		t.Errorf("error should carry a breadcrumb ending in Id, got %v", err)
	}
}

func TestMarshalUnboundRoot(t *testing.T) {
	m := New(pingRegistry(t))
	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := m.Marshal(&ctx, &buffer, &struct{}{})
	if !wbxml.IsKind(err, wbxml.KindSchemaMissing) {
		t.Fatalf("want SchemaMissing, got %v", err)
	}
}

func TestMarshalEmissionOrder(t *testing.T) {
	// Members are emitted in declaration order, not assignment or
	// name order.
	m := New(featureRegistry(t))
	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := m.Marshal(&ctx, &buffer, &featureDoc{Internal: "late", Public: "early"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data := buffer.Bytes()
	if bytes.Index(data, []byte("early")) > bytes.Index(data, []byte("late")) {
		t.Errorf("Public should precede Internal in % X", data)
	}
}
