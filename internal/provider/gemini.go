// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiClient speaks the Gemini generateContent API.
type geminiClient struct {
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
}

// buildGemini is the BuildFunc for the Google provider.
func buildGemini(_ Config, model, credential, systemPrompt string) Client {
	return &geminiClient{
		baseURL:      geminiBaseURL,
		apiKey:       credential,
		model:        model,
		systemPrompt: systemPrompt,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiContent holds one message. Roles are "user" and "model".
type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiSystem     `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerateCfg `json:"generationConfig"`
}

type geminiSystem struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateCfg struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// Send implements Client.
func (c *geminiClient) Send(ctx context.Context, messages []ChatMessage, opts SendOptions) (string, error) {
	payload := geminiRequest{
		Contents:         mapGeminiContents(messages),
		GenerationConfig: geminiGenerateCfg{Temperature: DefaultTemperature},
	}
	if c.systemPrompt != "" {
		payload.SystemInstruction = &geminiSystem{Parts: []geminiPart{{Text: c.systemPrompt}}}
	}

	resp, err := postJSON(ctx, c.endpoint(opts.Stream), nil, payload, opts.Stream)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := readResponse(resp)
		return "", upstreamError("Google", resp.StatusCode, body)
	}

	if opts.Stream {
		return c.readStream(ctx, resp.Body, opts)
	}
	return c.readComplete(resp)
}

// endpoint builds the model URL. The key travels as a query parameter.
func (c *geminiClient) endpoint(stream bool) string {
	method := "generateContent"
	query := "?key=" + url.QueryEscape(c.apiKey)
	if stream {
		method = "streamGenerateContent"
		query = "?alt=sse&key=" + url.QueryEscape(c.apiKey)
	}
	return fmt.Sprintf("%s/%s:%s%s", c.baseURL, c.model, method, query)
}

// readComplete parses a non-streaming response into the reply text.
func (c *geminiClient) readComplete(resp *http.Response) (string, error) {
	body, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	text := parsed.text()
	if text == "" {
		return "", fmt.Errorf("%w: response contained no candidates", ErrUpstreamFailure)
	}
	return text, nil
}

// readStream consumes the SSE stream; the stream ends at EOF, there is
// no done sentinel in this wire format.
func (c *geminiClient) readStream(ctx context.Context, body io.Reader, opts SendOptions) (string, error) {
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

		var chunk geminiResponse
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks
			continue
		}
		if fragment := chunk.text(); fragment != "" {
			full.WriteString(fragment)
			opts.emit(fragment)
		}
	}
}

// text concatenates the first candidate's parts.
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// mapGeminiContents converts wire messages to Gemini's role scheme.
// System messages never appear here; they travel as systemInstruction.
func mapGeminiContents(messages []ChatMessage) []geminiContent {
	out := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	return out
}
