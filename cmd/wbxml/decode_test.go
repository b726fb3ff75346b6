// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/wbxml/lib/airsync"
	"github.com/bureau-foundation/wbxml/lib/marshal"
	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

func pingDocument(t *testing.T) []byte {
	t.Helper()
	m := marshal.New(airsync.Registry())
	var buffer bytes.Buffer
	var ctx wbxml.Context
	err := m.Marshal(&ctx, &buffer, &airsync.Ping{
		HeartbeatInterval: "480",
		Folders: &airsync.PingFolders{Folder: []*airsync.PingFolder{
			{ID: "1", Class: "Email"},
		}},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return buffer.Bytes()
}

func TestDecodeTrace(t *testing.T) {
	var output bytes.Buffer
	err := decodeTrace(bytes.NewReader(pingDocument(t)), &output, airsync.Registry())
	if err != nil {
		t.Fatalf("decodeTrace: %v", err)
	}

	want := strings.Join([]string{
		"<Ping>",
		"  <HeartbeatInterval>",
		"    480",
		"  </HeartbeatInterval>",
		"  <Folders>",
		"    <Folder>",
		"      <Id>",
		"        1",
		"      </Id>",
		"      <Class>",
		"        Email",
		"      </Class>",
		"    </Folder>",
		"  </Folders>",
		"</Ping>",
		"",
	}, "\n")
	if output.String() != want {
		t.Errorf("trace =\n%s\nwant:\n%s", output.String(), want)
	}
}

func TestDecodeTraceOpaque(t *testing.T) {
	m := marshal.New(airsync.Registry())
	var buffer bytes.Buffer
	ctx := wbxml.Context{OpaqueStrings: true}
	err := m.Marshal(&ctx, &buffer, &airsync.Ping{HeartbeatInterval: "60"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var output bytes.Buffer
	if err := decodeTrace(&buffer, &output, airsync.Registry()); err != nil {
		t.Fatalf("decodeTrace: %v", err)
	}
	if !strings.Contains(output.String(), "opaque[2] 3630") {
		t.Errorf("trace should hex-dump the opaque payload, got:\n%s", output.String())
	}
}

func TestDecodeTraceMalformed(t *testing.T) {
	var output bytes.Buffer
	err := decodeTrace(bytes.NewReader([]byte{0x03, 0x01}), &output, airsync.Registry())
	if err == nil {
		t.Fatal("truncated document should fail")
	}
}

func TestHeaderDump(t *testing.T) {
	var output bytes.Buffer
	if err := dumpHeader(bytes.NewReader(pingDocument(t)), &output); err != nil {
		t.Fatalf("dumpHeader: %v", err)
	}
	for _, want := range []string{"WBXML 1.2", "UTF-8", "public id:     1"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("header dump should contain %q, got:\n%s", want, output.String())
		}
	}
}

func TestPageFinderFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.yaml")
	declarations := `
pages:
  - index: 2
    name: Custom
    public_id: 1
    tokens:
      - { token: 0x05, name: Root }
`
	if err := os.WriteFile(path, []byte(declarations), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	finder, err := pageFinder(path)
	if err != nil {
		t.Fatalf("pageFinder: %v", err)
	}
	field, ok := finder.FindField(2, 0x05)
	if !ok || field.Name != "Root" {
		t.Errorf("FindField(2, 0x05) = %v, %v", field, ok)
	}
}
