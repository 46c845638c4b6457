// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all CLI commands in parley.
//
// Handlers always return errors; display and process exit happen in one
// place so every command fails the same way.
//
// ERROR HANDLING: Errors must not be silently ignored

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/parley/internal/flow"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/storage"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a missing or rejected credential
	ExitAuthError = 4
	// ExitNetworkError indicates an upstream provider failure
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR DISPLAY AND EXIT
// =============================================================================

// DisplayError displays an error in a consistent format on stderr.
func DisplayError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
}

// HandleErrorAndExit displays an error and exits with an appropriate
// exit code. Use this for fatal errors in main command dispatch.
func HandleErrorAndExit(err error) {
	if err == nil {
		return
	}
	DisplayError(err)
	os.Exit(GetExitCode(err))
}

// GetExitCode determines the appropriate exit code for an error.
// Domain sentinels map to specific codes so scripts can branch on
// what went wrong instead of parsing stderr.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, provider.ErrUnknownProvider),
		errors.Is(err, provider.ErrUnknownModel),
		errors.Is(err, flow.ErrEmptyInput):
		return ExitUsageError

	case errors.Is(err, provider.ErrMissingCredential):
		return ExitAuthError

	case errors.Is(err, provider.ErrUpstreamFailure):
		return ExitNetworkError

	case errors.Is(err, storage.ErrSessionNotFound):
		return ExitNotFoundError
	}

	var ttyErr *TTYRequiredError
	if errors.As(err, &ttyErr) {
		return ExitUsageError
	}

	var configErr configError
	if errors.As(err, &configErr) {
		return ExitConfigError
	}

	return ExitGeneralError
}

// configError marks an error as configuration-related for exit-code
// mapping. Wrap with asConfigError where a config load/save fails.
type configError struct {
	err error
}

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

// asConfigError tags err as a configuration failure.
func asConfigError(err error) error {
	if err == nil {
		return nil
	}
	return configError{err: err}
}
