// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
)

// scriptedClient is a provider.Client driven by the test.
type scriptedClient struct {
	reply     string
	err       error
	fragments []string
	calls     int
	gotMsgs   []provider.ChatMessage
}

func (c *scriptedClient) Send(ctx context.Context, msgs []provider.ChatMessage, opts provider.SendOptions) (string, error) {
	c.calls++
	c.gotMsgs = msgs

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if c.err != nil {
		return "", c.err
	}
	if opts.Stream {
		for _, f := range c.fragments {
			if opts.OnFragment != nil {
				opts.OnFragment(f)
			}
		}
	}
	return c.reply, nil
}

// echoSetup builds a flow whose "Echo" provider returns the scripted
// client, plus a fresh conversation pointed at it.
func echoSetup(t *testing.T, client *scriptedClient) (*Flow, *model.Conversation, *credential.Store) {
	t.Helper()

	factory := provider.NewFactory()
	factory.Register(
		provider.Config{Name: "Echo", CredentialKey: "ECHO_KEY", Models: []string{"echo-1"}},
		func(_ provider.Config, _, _, _ string) provider.Client { return client },
	)

	creds := credential.NewStore(filepath.Join(t.TempDir(), "credentials.env"))
	conv := model.NewConversation("Echo", "echo-1")
	return New(factory, creds), conv, creds
}

func TestRun_EmptyInputAppendsExactlyOneMessage(t *testing.T) {
	client := &scriptedClient{reply: "unused"}
	f, conv, creds := echoSetup(t, client)
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))

	for _, input := range []string{"", "   ", "\n\t "} {
		conv.Clear()

		state, err := f.Run(context.Background(), conv, input, Options{})
		require.Equal(t, StateDone, state)
		require.True(t, errors.Is(err, ErrEmptyInput))

		// Exactly one message: the error. No user message.
		require.Len(t, conv.Messages, 1, "input %q", input)
		require.Equal(t, model.RoleError, conv.Messages[0].Role)
	}
	require.Zero(t, client.calls, "empty input must never reach the network")
}

func TestRun_MissingCredential(t *testing.T) {
	client := &scriptedClient{reply: "unused"}
	f, conv, _ := echoSetup(t, client)

	state, err := f.Run(context.Background(), conv, "hello", Options{})
	require.Equal(t, StateDone, state)
	require.True(t, errors.Is(err, provider.ErrMissingCredential))

	require.Len(t, conv.Messages, 2)
	require.Equal(t, model.RoleUser, conv.Messages[0].Role)
	require.Equal(t, "hello", conv.Messages[0].Content)
	require.Equal(t, model.RoleError, conv.Messages[1].Role)
	require.Contains(t, conv.Messages[1].Content, "ECHO_KEY")

	require.Zero(t, client.calls, "validation failure must never reach the network")
	require.NotEmpty(t, conv.LastError)
}

func TestRun_SuccessAppendsUserThenAssistant(t *testing.T) {
	client := &scriptedClient{reply: "hi there"}
	f, conv, creds := echoSetup(t, client)
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))

	state, err := f.Run(context.Background(), conv, "hello", Options{})
	require.Equal(t, StateDone, state)
	require.NoError(t, err)

	require.Len(t, conv.Messages, 2)
	require.Equal(t, model.RoleUser, conv.Messages[0].Role)
	require.Equal(t, "hello", conv.Messages[0].Content)
	require.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	require.Equal(t, "hi there", conv.Messages[1].Content)
	require.Equal(t, 1, client.calls)
}

func TestRun_UnknownProviderNeverGenerates(t *testing.T) {
	client := &scriptedClient{reply: "unused"}
	f, conv, _ := echoSetup(t, client)
	conv.Provider = "Nonexistent"

	_, err := f.Run(context.Background(), conv, "hello", Options{})
	require.True(t, errors.Is(err, provider.ErrUnknownProvider))

	require.Len(t, conv.Messages, 2)
	require.Equal(t, model.RoleUser, conv.Messages[0].Role)
	require.Equal(t, model.RoleError, conv.Messages[1].Role)
	require.Zero(t, client.calls)
}

func TestRun_UnknownModel(t *testing.T) {
	client := &scriptedClient{reply: "unused"}
	f, conv, creds := echoSetup(t, client)
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))
	conv.Model = "echo-99"

	_, err := f.Run(context.Background(), conv, "hello", Options{})
	require.True(t, errors.Is(err, provider.ErrUnknownModel))
	require.Zero(t, client.calls)
}

func TestRun_GenerateFailureAppendsErrorNotAssistant(t *testing.T) {
	boom := &provider.APIError{Provider: "Echo", Status: 500, Message: "upstream exploded"}
	client := &scriptedClient{err: boom}
	f, conv, creds := echoSetup(t, client)
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))

	state, err := f.Run(context.Background(), conv, "hello", Options{})
	require.Equal(t, StateDone, state)
	require.True(t, errors.Is(err, provider.ErrUpstreamFailure))

	require.Len(t, conv.Messages, 2)
	require.Equal(t, model.RoleUser, conv.Messages[0].Role)
	require.Equal(t, model.RoleError, conv.Messages[1].Role)
	require.Contains(t, conv.Messages[1].Content, "upstream exploded")
	require.Contains(t, conv.LastError, "upstream exploded")

	// One attempt only; a failed turn is terminal.
	require.Equal(t, 1, client.calls)
}

func TestRun_CancellationRecordedAsCancelled(t *testing.T) {
	client := &scriptedClient{reply: "unused"}
	f, conv, creds := echoSetup(t, client)
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := f.Run(ctx, conv, "hello", Options{})
	require.Equal(t, StateDone, state)
	require.True(t, errors.Is(err, ErrCancelled))

	require.Len(t, conv.Messages, 2)
	require.Equal(t, model.RoleError, conv.Messages[1].Role)
	require.Equal(t, "cancelled", conv.Messages[1].Content)
	require.Equal(t, "cancelled", conv.LastError)
}

func TestRun_StreamingForwardsFragments(t *testing.T) {
	client := &scriptedClient{reply: "hi there", fragments: []string{"hi ", "there"}}
	f, conv, creds := echoSetup(t, client)
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))

	var got []string
	state, err := f.Run(context.Background(), conv, "hello", Options{
		Stream:     true,
		OnFragment: func(fr string) { got = append(got, fr) },
	})
	require.Equal(t, StateDone, state)
	require.NoError(t, err)
	require.Equal(t, []string{"hi ", "there"}, got)

	// Assistant message holds the complete reply regardless of streaming.
	require.Equal(t, "hi there", conv.LastAssistantMessage().Content)
}

func TestRun_ErrorMessagesStayOffTheWire(t *testing.T) {
	client := &scriptedClient{reply: "second answer"}
	f, conv, creds := echoSetup(t, client)

	// First turn fails on a missing credential and appends an error.
	_, err := f.Run(context.Background(), conv, "first question", Options{})
	require.Error(t, err)

	// Second turn succeeds; the wire payload must contain only the
	// user/assistant history, never the error message.
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))
	_, err = f.Run(context.Background(), conv, "second question", Options{})
	require.NoError(t, err)

	for _, m := range client.gotMsgs {
		require.NotEqual(t, "error", m.Role)
	}
	require.Len(t, client.gotMsgs, 2) // both user questions, no error line
}

func TestRun_InputNormalized(t *testing.T) {
	client := &scriptedClient{reply: "ok"}
	f, conv, creds := echoSetup(t, client)
	require.NoError(t, creds.Set("ECHO_KEY", "abc123"))

	// "e" + combining acute accent normalizes to a single rune.
	_, err := f.Run(context.Background(), conv, "  café  ", Options{})
	require.NoError(t, err)
	require.Equal(t, "café", conv.Messages[0].Content)
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateValidate: "validate",
		StateGenerate: "generate",
		StateError:    "error",
		StateDone:     "done",
		State(42):     "unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}
