// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// testFinder resolves tokens from a flat (page, token) → name table.
type testFinder map[[2]int]string

func (f testFinder) FindField(page, token int) (CodePageField, bool) {
	name, ok := f[[2]int{page, token}]
	if !ok {
		return CodePageField{}, false
	}
	return CodePageField{Page: page, Token: token, Name: name}, true
}

var pingFinder = testFinder{
	{13, 0x05}: "Ping",
	{13, 0x0A}: "HeartbeatInterval",
	{13, 0x13}: "Armed",
}

// buildDocument assembles a small document through the encoder so
// decoder tests exercise real byte layouts.
func buildDocument(t *testing.T, build func(*Encoder) error) []byte {
	t.Helper()
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, err := range []error{
		encoder.WriteVersion(0x03),
		encoder.WritePublicID(1),
		encoder.WriteCharset(106),
		encoder.WriteStringTable(0),
	} {
		if err != nil {
			t.Fatalf("preamble: %v", err)
		}
	}
	if err := build(encoder); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := encoder.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return buffer.Bytes()
}

func collectEvents(t *testing.T, data []byte, finder PageFinder) []Event {
	t.Helper()
	decoder := NewDecoderBytes(data, finder)
	var events []Event
	for {
		event, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Next after %d events: %v", len(events), err)
		}
		events = append(events, *event)
	}
}

func TestDecoderEventStream(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error {
		for _, err := range []error{
			e.SwitchPage(13),
			e.PushElement(0x05, true),
			e.PushElement(0x0A, true),
			e.InlineString("480"),
			e.PopElement(),
			e.PopElement(),
		} {
			if err != nil {
				return err
			}
		}
		return nil
	})

	events := collectEvents(t, data, pingFinder)

	wantTypes := []EventType{StartElement, StartElement, Text, EndElement, EndElement}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d = %s, want %s", i, events[i].Type, want)
		}
	}
	if events[0].Field.Name != "Ping" {
		t.Errorf("root element = %q, want Ping", events[0].Field.Name)
	}
	if events[2].Text != "480" {
		t.Errorf("text = %q, want 480", events[2].Text)
	}

	starts, ends := 0, 0
	for _, event := range events {
		switch event.Type {
		case StartElement:
			starts++
		case EndElement:
			ends++
		}
	}
	if starts != ends {
		t.Errorf("unbalanced stream: %d starts, %d ends", starts, ends)
	}
}

func TestDecoderEmptyElement(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error {
		if err := e.SwitchPage(13); err != nil {
			return err
		}
		if err := e.PushElement(0x05, true); err != nil {
			return err
		}
		if err := e.PushElement(0x13, false); err != nil {
			return err
		}
		return e.PopElement()
	})

	events := collectEvents(t, data, pingFinder)
	wantTypes := []EventType{StartElement, StartElement, EndElement, EndElement}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d = %s, want %s", i, events[i].Type, want)
		}
	}
	if events[1].Field.Name != "Armed" || events[2].Field.Name != "Armed" {
		t.Errorf("empty element events = %q/%q, want Armed/Armed",
			events[1].Field.Name, events[2].Field.Name)
	}
}

func TestDecoderOpaque(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x02, 0xFF}
	data := buildDocument(t, func(e *Encoder) error {
		if err := e.SwitchPage(13); err != nil {
			return err
		}
		if err := e.PushElement(0x05, true); err != nil {
			return err
		}
		if err := e.Opaque(payload); err != nil {
			return err
		}
		return e.PopElement()
	})

	events := collectEvents(t, data, pingFinder)
	if len(events) != 3 || events[1].Type != Opaque {
		t.Fatalf("want Start/Opaque/End, got %v", events)
	}
	if !bytes.Equal(events[1].Opaque, payload) {
		t.Errorf("opaque = % X, want % X", events[1].Opaque, payload)
	}
}

func TestDecoderSwitchPage(t *testing.T) {
	finder := testFinder{
		{0, 0x05}: "Root",
		{1, 0x06}: "Child",
	}
	data := buildDocument(t, func(e *Encoder) error {
		for _, err := range []error{
			e.SwitchPage(0),
			e.PushElement(0x05, true),
			e.SwitchPage(1),
			e.PushElement(0x06, true),
			e.PopElement(),
			e.PopElement(),
		} {
			if err != nil {
				return err
			}
		}
		return nil
	})

	events := collectEvents(t, data, finder)
	if events[1].Field.Name != "Child" || events[1].Field.Page != 1 {
		t.Errorf("nested element = %q on page %d, want Child on page 1",
			events[1].Field.Name, events[1].Field.Page)
	}
}

func TestDecoderUnknownToken(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error {
		if err := e.SwitchPage(13); err != nil {
			return err
		}
		if err := e.PushElement(0x3F, true); err != nil {
			return err
		}
		return e.PopElement()
	})

	decoder := NewDecoderBytes(data, pingFinder)
	_, err := decoder.Next()
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("unknown token should be a FormatError, got %v", err)
	}
}

func TestDecoderAttributeBit(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error { return nil })
	data = append(data, 0xC5) // token 0x05 with the attribute bit set

	decoder := NewDecoderBytes(data, pingFinder)
	_, err := decoder.Next()
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("attribute bit should be a FormatError, got %v", err)
	}
}

func TestDecoderTruncatedOpaque(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error {
		if err := e.SwitchPage(13); err != nil {
			return err
		}
		if err := e.PushElement(0x05, true); err != nil {
			return err
		}
		if err := e.Opaque([]byte{1, 2, 3, 4}); err != nil {
			return err
		}
		return e.PopElement()
	})
	// Cut into the opaque payload; the payload read fails before the
	// missing END matters.
	data = data[:len(data)-3]

	decoder := NewDecoderBytes(data, pingFinder)
	var err error
	for err == nil {
		_, err = decoder.Next()
	}
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("truncated opaque should be a FormatError, got %v", err)
	}
}

func TestDecoderUnclosedElement(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error {
		if err := e.SwitchPage(13); err != nil {
			return err
		}
		if err := e.PushElement(0x05, true); err != nil {
			return err
		}
		return e.PopElement()
	})
	data = data[:len(data)-1] // drop the END

	decoder := NewDecoderBytes(data, pingFinder)
	var err error
	for err == nil {
		_, err = decoder.Next()
	}
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("unclosed element should be a FormatError, got %v", err)
	}
}

func TestDecoderTextOutsideElement(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error { return nil })
	data = append(data, 0x03, 'x', 0x00)

	decoder := NewDecoderBytes(data, pingFinder)
	_, err := decoder.Next()
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("stray text should be a FormatError, got %v", err)
	}
}

func TestDecoderHeader(t *testing.T) {
	data := buildDocument(t, func(e *Encoder) error { return nil })
	decoder := NewDecoderBytes(data, nil)
	header, err := decoder.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if header.Version != 0x03 || header.PublicID != 1 || header.Charset != 106 || header.StringTableLength != 0 {
		t.Errorf("header = %+v", header)
	}
}

func TestIsDocument(t *testing.T) {
	document := buildDocument(t, func(e *Encoder) error {
		if err := e.SwitchPage(13); err != nil {
			return err
		}
		if err := e.PushElement(0x05, true); err != nil {
			return err
		}
		return e.PopElement()
	})
	headerOnly := buildDocument(t, func(e *Encoder) error { return nil })

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"document with body", document, true},
		{"bare preamble", headerOnly, false},
		{"garbage body", append(append([]byte{}, headerOnly...), 0x02), false},
		{"plain text", []byte("hello, world"), false},
		{"empty", nil, false},
		{"truncated", document[:2], false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsDocument(test.data); got != test.want {
				t.Errorf("IsDocument = %v, want %v", got, test.want)
			}
		})
	}
}
