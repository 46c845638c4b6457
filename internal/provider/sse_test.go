// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"io"
	"strings"
	"testing"
)

func TestSSEReader_SingleEvent(t *testing.T) {
	input := "data: {\"x\":1}\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if string(data) != `{"x":1}` {
		t.Errorf("data = %q", data)
	}

	_, _, err = reader.ReadEvent()
	if err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestSSEReader_EventType(t *testing.T) {
	input := "event: content_block_delta\ndata: {\"type\":\"content_block_delta\"}\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	eventType, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if eventType != "content_block_delta" {
		t.Errorf("eventType = %q", eventType)
	}
	if string(data) != `{"type":"content_block_delta"}` {
		t.Errorf("data = %q", data)
	}
}

func TestSSEReader_MultipleEvents(t *testing.T) {
	input := "data: one\n\ndata: two\n\ndata: [DONE]\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	want := []string{"one", "two", "[DONE]"}
	for i, expected := range want {
		_, data, err := reader.ReadEvent()
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if string(data) != expected {
			t.Errorf("event %d = %q, want %q", i, data, expected)
		}
	}
}

func TestSSEReader_CRLFLines(t *testing.T) {
	input := "data: hello\r\n\r\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q", data)
	}
}

func TestSSEReader_DataBeforeEOF(t *testing.T) {
	// No trailing blank line; data must still be delivered.
	input := "data: tail"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if string(data) != "tail" {
		t.Errorf("data = %q", data)
	}
}

func TestSSEReader_IgnoresComments(t *testing.T) {
	input := ": keepalive\nid: 7\ndata: real\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if string(data) != "real" {
		t.Errorf("data = %q", data)
	}
}

func TestSSEReader_MultiLineData(t *testing.T) {
	input := "data: line1\ndata: line2\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent error: %v", err)
	}
	if string(data) != "line1\nline2" {
		t.Errorf("data = %q", data)
	}
}

func TestStreamError_PreservesPartial(t *testing.T) {
	inner := io.ErrUnexpectedEOF
	err := &StreamError{Partial: "partial text", Err: inner}

	if !strings.Contains(err.Error(), "partial content received") {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap did not return the inner error")
	}
}
