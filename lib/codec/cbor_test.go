// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type device struct {
	Model    string `json:"model"`
	Firmware string `json:"firmware"`
}

func TestMarshalRoundTrip(t *testing.T) {
	original := device{Model: "iPod", Firmware: "4.2.1"}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded device
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip = %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"b": 2, "a": 1, "c": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("encoding not deterministic: % X != % X", first, second)
	}
}

func TestStandardCodec(t *testing.T) {
	original := &device{Model: "iPhone"}
	data, err := Standard.Marshal(original)
	if err != nil {
		t.Fatalf("Standard.Marshal: %v", err)
	}

	var decoded device
	if err := Standard.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Standard.Unmarshal: %v", err)
	}
	if decoded != *original {
		t.Errorf("round trip = %+v, want %+v", decoded, *original)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var decoded device
	if err := Unmarshal([]byte{0xFF, 0xFF, 0xFF}, &decoded); err == nil {
		t.Fatal("garbage input should fail")
	}
}

func TestDecodeToAnyUsesStringKeys(t *testing.T) {
	data, err := Marshal(map[string]string{"key": "value"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded.(map[string]any); !ok {
		t.Errorf("any-typed decode produced %T, want map[string]any", decoded)
	}
}
