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

func TestOpenAIClient_Send(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{
				"message": {"role": "assistant", "content": "test response"},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer server.Close()

	client := &openAIClient{
		providerName: "OpenAI",
		baseURL:      server.URL,
		apiKey:       "sk-test",
		model:        "gpt-5",
		systemPrompt: "be brief",
	}

	reply, err := client.Send(context.Background(), []ChatMessage{UserMessage("hello")}, SendOptions{})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if reply != "test response" {
		t.Errorf("reply = %q", reply)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "gpt-5" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v", gotReq.Temperature)
	}

	// System prompt is prepended as the first message.
	if len(gotReq.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != RoleSystem || gotReq.Messages[0].Content != "be brief" {
		t.Errorf("first message = %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != RoleUser || gotReq.Messages[1].Content != "hello" {
		t.Errorf("second message = %+v", gotReq.Messages[1])
	}
}

func TestOpenAIClient_NoSystemPrompt(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	client := &openAIClient{providerName: "Groq", baseURL: server.URL, apiKey: "k", model: "m"}
	_, err := client.Send(context.Background(), []ChatMessage{UserMessage("q")}, SendOptions{})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(gotReq.Messages) != 1 {
		t.Errorf("messages = %d, want 1 (no system prepend)", len(gotReq.Messages))
	}
}

func TestOpenAIClient_SendStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("stream not requested")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"hi \"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"there\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := &openAIClient{providerName: "OpenAI", baseURL: server.URL, apiKey: "k", model: "gpt-5"}

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
	if len(fragments) != 2 || fragments[0] != "hi " || fragments[1] != "there" {
		t.Errorf("fragments = %v", fragments)
	}
}

func TestOpenAIClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid key", "type": "auth_error"}}`))
	}))
	defer server.Close()

	client := &openAIClient{providerName: "OpenAI", baseURL: server.URL, apiKey: "bad", model: "gpt-5"}

	_, err := client.Send(context.Background(), []ChatMessage{UserMessage("hello")}, SendOptions{})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected upstream failure, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected *APIError")
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "invalid key" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestOpenAIClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := &openAIClient{providerName: "OpenAI", baseURL: server.URL, apiKey: "k", model: "gpt-5"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, []ChatMessage{UserMessage("hello")}, SendOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestOpenRouterHeaders(t *testing.T) {
	var referer, title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	client := &openAIClient{
		providerName: "OpenRouter",
		baseURL:      server.URL,
		apiKey:       "k",
		model:        "openai/gpt-5.2",
		extraHeaders: openRouterHeaders(),
	}
	_, err := client.Send(context.Background(), []ChatMessage{UserMessage("q")}, SendOptions{})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if referer == "" || title != "parley" {
		t.Errorf("attribution headers = %q / %q", referer, title)
	}
}
