// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Base URLs for the openai-compatible providers.
const (
	openAIBaseURL     = "https://api.openai.com/v1"
	groqBaseURL       = "https://api.groq.com/openai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// openRouterHeaders returns the attribution headers OpenRouter asks for.
func openRouterHeaders() map[string]string {
	return map[string]string{
		"HTTP-Referer": "https://github.com/jeranaias/parley",
		"X-Title":      "parley",
	}
}

// openAIClient speaks the chat completions wire format shared by OpenAI,
// Groq, and OpenRouter. Only the base URL and headers differ per provider.
type openAIClient struct {
	providerName string
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
	extraHeaders map[string]string
}

// buildOpenAICompat returns a BuildFunc bound to one base URL.
func buildOpenAICompat(baseURL string, extraHeaders map[string]string) BuildFunc {
	return func(cfg Config, model, credential, systemPrompt string) Client {
		return &openAIClient{
			providerName: cfg.Name,
			baseURL:      baseURL,
			apiKey:       credential,
			model:        model,
			systemPrompt: systemPrompt,
			extraHeaders: extraHeaders,
		}
	}
}

// chatRequest is the chat completions request payload.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatResponse is the non-streaming chat completions response.
type chatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// streamChunk is one SSE data payload from a streaming response.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Send implements Client.
func (c *openAIClient) Send(ctx context.Context, messages []ChatMessage, opts SendOptions) (string, error) {
	// System prompt travels as the first message in this wire format.
	payload := chatRequest{
		Model:       c.model,
		Messages:    prependSystem(c.systemPrompt, messages),
		Stream:      opts.Stream,
		Temperature: DefaultTemperature,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}
	for k, v := range c.extraHeaders {
		headers[k] = v
	}

	resp, err := postJSON(ctx, c.baseURL+"/chat/completions", headers, payload, opts.Stream)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := readResponse(resp)
		return "", upstreamError(c.providerName, resp.StatusCode, body)
	}

	if opts.Stream {
		return c.readStream(ctx, resp.Body, opts)
	}
	return c.readComplete(resp)
}

// readComplete parses a non-streaming response into the reply text.
func (c *openAIClient) readComplete(resp *http.Response) (string, error) {
	body, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", ErrUpstreamFailure)
	}
	return parsed.Choices[0].Message.Content, nil
}

// readStream consumes the SSE stream, forwarding fragments as they arrive.
func (c *openAIClient) readStream(ctx context.Context, body io.Reader, opts SendOptions) (string, error) {
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

		// Check for [DONE] signal
		if bytes.Equal(data, []byte("[DONE]")) {
			return full.String(), nil
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if fragment := chunk.Choices[0].Delta.Content; fragment != "" {
			full.WriteString(fragment)
			opts.emit(fragment)
		}
	}
}

// prependSystem places the system prompt at the head of the message list.
func prependSystem(systemPrompt string, messages []ChatMessage) []ChatMessage {
	if systemPrompt == "" {
		return messages
	}
	out := make([]ChatMessage, 0, len(messages)+1)
	out = append(out, SystemMessage(systemPrompt))
	out = append(out, messages...)
	return out
}
