// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"errors"
	"fmt"
)

// Error variables for provider selection and upstream failures.
var (
	// ErrUnknownProvider indicates the provider name is not in the registry.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnknownModel indicates the model is not listed for the provider.
	ErrUnknownModel = errors.New("unknown model")

	// ErrMissingCredential indicates no API key is available for the provider.
	ErrMissingCredential = errors.New("missing credential")

	// ErrUpstreamFailure indicates the provider API returned an error.
	ErrUpstreamFailure = errors.New("upstream failure")
)

// APIError represents an error response from a provider API.
type APIError struct {
	Provider string
	Status   int
	Code     string
	Message  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error [%s] (HTTP %d): %s", e.Provider, e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.Status, e.Message)
}

// Is allows APIError to be matched against ErrUpstreamFailure.
func (e *APIError) Is(target error) bool {
	return target == ErrUpstreamFailure
}
