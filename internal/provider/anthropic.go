// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

// anthropicClient speaks the Anthropic messages API.
type anthropicClient struct {
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
}

// buildAnthropic is the BuildFunc for the Anthropic provider.
func buildAnthropic(_ Config, model, credential, systemPrompt string) Client {
	return &anthropicClient{
		baseURL:      anthropicBaseURL,
		apiKey:       credential,
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// anthropicRequest is the messages API request payload. The system prompt
// is a top-level field, not a message, and max_tokens is required.
type anthropicRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// anthropicStreamEvent is one SSE data payload. Text arrives in
// content_block_delta events carrying a text_delta.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"delta,omitempty"`
}

// Send implements Client.
func (c *anthropicClient) Send(ctx context.Context, messages []ChatMessage, opts SendOptions) (string, error) {
	payload := anthropicRequest{
		Model:       c.model,
		Messages:    dropSystem(messages),
		System:      c.systemPrompt,
		MaxTokens:   DefaultMaxTokens,
		Stream:      opts.Stream,
		Temperature: DefaultTemperature,
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	resp, err := postJSON(ctx, c.baseURL+"/messages", headers, payload, opts.Stream)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := readResponse(resp)
		return "", upstreamError("Anthropic", resp.StatusCode, body)
	}

	if opts.Stream {
		return c.readStream(ctx, resp.Body, opts)
	}
	return c.readComplete(resp)
}

// readComplete concatenates the text blocks of a non-streaming response.
func (c *anthropicClient) readComplete(resp *http.Response) (string, error) {
	body, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var full strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			full.WriteString(block.Text)
		}
	}
	if full.Len() == 0 {
		return "", fmt.Errorf("%w: response contained no text content", ErrUpstreamFailure)
	}
	return full.String(), nil
}

// readStream consumes the SSE event stream until message_stop or EOF.
func (c *anthropicClient) readStream(ctx context.Context, body io.Reader, opts SendOptions) (string, error) {
	reader := NewSSEReader(body)
	var full strings.Builder

	for {
		select {
		case <-ctx.Done():
			return full.String(), ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return full.String(), nil
			}
			return full.String(), &StreamError{Partial: full.String(), Err: err}
		}

		var event anthropicStreamEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// Skip malformed chunks
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				full.WriteString(event.Delta.Text)
				opts.emit(event.Delta.Text)
			}
		case "message_stop":
			return full.String(), nil
		}
	}
}

// dropSystem strips system messages; this API takes the system prompt as
// a top-level field only.
func dropSystem(messages []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
