// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiClient_Send(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "gemini says hi"}]}}]}`))
	}))
	defer server.Close()

	client := &geminiClient{
		baseURL:      server.URL,
		apiKey:       "AIza-test",
		model:        "gemini-3-pro",
		systemPrompt: "be brief",
	}

	reply, err := client.Send(context.Background(), []ChatMessage{
		UserMessage("hello"),
		AssistantMessage("earlier reply"),
		UserMessage("next question"),
	}, SendOptions{})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if reply != "gemini says hi" {
		t.Errorf("reply = %q", reply)
	}
	if !strings.HasSuffix(gotPath, "gemini-3-pro:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "AIza-test" {
		t.Errorf("key = %q", gotKey)
	}

	// Roles map to user/model; system prompt rides separately.
	if len(gotReq.Contents) != 3 {
		t.Fatalf("contents = %d", len(gotReq.Contents))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, content := range gotReq.Contents {
		if content.Role != wantRoles[i] {
			t.Errorf("contents[%d].role = %q, want %q", i, content.Role, wantRoles[i])
		}
	}
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "be brief" {
		t.Errorf("systemInstruction = %+v", gotReq.SystemInstruction)
	}
}

func TestGeminiClient_SendStream(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("alt") != "sse" {
			t.Error("alt=sse not requested")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"hi \"}]}}]}\n\n"))
		w.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"there\"}]}}]}\n\n"))
	}))
	defer server.Close()

	client := &geminiClient{baseURL: server.URL, apiKey: "k", model: "gemini-3-flash"}

	var fragments []string
	reply, err := client.Send(context.Background(), []ChatMessage{UserMessage("hello")}, SendOptions{
		Stream:     true,
		OnFragment: func(f string) { fragments = append(fragments, f) },
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("reply = %q", reply)
	}
	if !strings.HasSuffix(gotPath, "gemini-3-flash:streamGenerateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if len(fragments) != 2 {
		t.Errorf("fragments = %v", fragments)
	}
}

func TestGeminiClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid"}}`))
	}))
	defer server.Close()

	client := &geminiClient{baseURL: server.URL, apiKey: "bad", model: "gemini-3-pro"}

	_, err := client.Send(context.Background(), []ChatMessage{UserMessage("hello")}, SendOptions{})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected upstream failure, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected *APIError")
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.Status)
	}
	if !strings.Contains(apiErr.Message, "API key not valid") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := &geminiClient{baseURL: server.URL, apiKey: "k", model: "gemini-3-pro"}

	_, err := client.Send(context.Background(), []ChatMessage{UserMessage("hello")}, SendOptions{})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Errorf("expected upstream failure, got %v", err)
	}
}
