// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicClient_Send(t *testing.T) {
	var gotKey, gotVersion string
	var gotReq anthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"content": [{"type": "text", "text": "claude says hi"}]}`))
	}))
	defer server.Close()

	client := &anthropicClient{
		baseURL:      server.URL,
		apiKey:       "sk-ant-test",
		model:        "claude-opus-4.5",
		systemPrompt: "be brief",
	}

	reply, err := client.Send(context.Background(), []ChatMessage{UserMessage("hello")}, SendOptions{})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if reply != "claude says hi" {
		t.Errorf("reply = %q", reply)
	}
	if gotKey != "sk-ant-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != anthropicAPIVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}

	// System prompt is a top-level field; max_tokens is always set.
	if gotReq.System != "be brief" {
		t.Errorf("system = %q", gotReq.System)
	}
	if gotReq.MaxTokens != DefaultMaxTokens {
		t.Errorf("max_tokens = %d", gotReq.MaxTokens)
	}
	for _, m := range gotReq.Messages {
		if m.Role == RoleSystem {
			t.Error("system role leaked into messages array")
		}
	}
}

func TestAnthropicClient_SendStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("event: message_start\ndata: {\"type\":\"message_start\"}\n\n"))
		w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"hi \"}}\n\n"))
		w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"there\"}}\n\n"))
		w.Write([]byte("event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"))
	}))
	defer server.Close()

	client := &anthropicClient{baseURL: server.URL, apiKey: "k", model: "claude-sonnet-4.5"}

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
	if len(fragments) != 2 {
		t.Errorf("fragments = %v", fragments)
	}
}

func TestAnthropicClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	client := &anthropicClient{baseURL: server.URL, apiKey: "k", model: "claude-opus-4.5"}

	_, err := client.Send(context.Background(), []ChatMessage{UserMessage("hello")}, SendOptions{})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected upstream failure, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected *APIError")
	}
	if apiErr.Status != http.StatusTooManyRequests || apiErr.Code != "rate_limit_error" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
