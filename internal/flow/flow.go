// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flow

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
)

// Error variables for turn-local failures.
var (
	// ErrEmptyInput indicates the submitted text was empty after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrCancelled indicates the caller abandoned the turn mid-generate.
	ErrCancelled = errors.New("cancelled")
)

// State is one node of the turn state machine.
type State int

const (
	// StateValidate checks input and selection before any network call.
	StateValidate State = iota

	// StateGenerate calls the provider client.
	StateGenerate

	// StateError records a single error message for the turn.
	StateError

	// StateDone is terminal.
	StateDone
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateValidate:
		return "validate"
	case StateGenerate:
		return "generate"
	case StateError:
		return "error"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Options controls delivery for one turn.
type Options struct {
	// Stream forwards reply fragments through OnFragment as they arrive.
	Stream bool

	// OnFragment receives fragments during a streaming turn. May be nil.
	OnFragment func(fragment string)
}

// Flow validates and generates turns against a provider factory and a
// credential store. One Flow serves any number of conversations.
type Flow struct {
	factory *provider.Factory
	creds   *credential.Store
}

// New creates a Flow.
func New(factory *provider.Factory, creds *credential.Store) *Flow {
	return &Flow{factory: factory, creds: creds}
}

// Run executes one turn against conv, which is mutated in place: a
// successful turn appends the user and assistant messages, a failed one
// appends the user message (unless input was empty) and exactly one
// error message. Returns the terminal state and the turn error.
func (f *Flow) Run(ctx context.Context, conv *model.Conversation, input string, opts Options) (State, error) {
	t := &turn{
		flow:  f,
		conv:  conv,
		input: input,
		opts:  opts,
	}

	state := StateValidate
	for state != StateDone {
		switch state {
		case StateValidate:
			state = t.validate()
		case StateGenerate:
			state = t.generate(ctx)
		case StateError:
			state = t.fail()
		}
	}
	return StateDone, t.err
}

// turn carries the mutable state of a single Run.
type turn struct {
	flow   *Flow
	conv   *model.Conversation
	input  string
	opts   Options
	client provider.Client
	err    error
}

// validate normalizes the input, appends the user message, and builds
// the provider client. Any failure here skips straight to StateError
// without touching the network.
func (t *turn) validate() State {
	// UNICODE: NFC normalization so visually identical input compares equal.
	text := strings.TrimSpace(norm.NFC.String(t.input))
	if text == "" {
		// No user message for empty input; the turn appends only the error.
		t.err = ErrEmptyInput
		return StateError
	}

	t.conv.AddMessage(model.NewUserMessage(text))

	cfg, err := t.flow.factory.Get(t.conv.Provider)
	if err != nil {
		t.err = err
		return StateError
	}

	cred, _ := t.flow.creds.Get(cfg.CredentialKey)
	client, err := t.flow.factory.Build(t.conv.Provider, t.conv.Model, cred, t.conv.SystemPrompt)
	if err != nil {
		t.err = err
		return StateError
	}

	t.client = client
	return StateGenerate
}

// generate calls the provider. The assistant message is appended only
// from the complete reply after a nil error - never from fragments.
func (t *turn) generate(ctx context.Context) State {
	reply, err := t.client.Send(ctx, wireMessages(t.conv), provider.SendOptions{
		Stream:     t.opts.Stream,
		OnFragment: t.opts.OnFragment,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			t.err = ErrCancelled
		} else {
			t.err = err
		}
		return StateError
	}

	t.conv.AddMessage(model.NewCompleteAssistantMessage(reply))
	return StateDone
}

// fail appends exactly one error message carrying the reason and records
// it on the conversation. No retry; the next user turn starts fresh.
func (t *turn) fail() State {
	reason := t.err.Error()
	t.conv.AddMessage(model.NewErrorMessage(reason))
	t.conv.LastError = reason
	return StateDone
}

// wireMessages converts the conversation history for the provider
// boundary. Error messages are local artifacts and system prompts travel
// out-of-band, so only user and assistant messages go on the wire.
func wireMessages(conv *model.Conversation) []provider.ChatMessage {
	out := make([]provider.ChatMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		switch m.Role {
		case model.RoleUser:
			out = append(out, provider.UserMessage(m.Content))
		case model.RoleAssistant:
			out = append(out, provider.AssistantMessage(m.Content))
		}
	}
	return out
}
