// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/runwk/runwk/internal/bazel"
	"github.com/runwk/runwk/internal/config"
	"github.com/runwk/runwk/internal/issue"
	"github.com/runwk/runwk/internal/strategy"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// classifyResolutionError maps resolution failures to issue catalog IDs and
// returns a styled message for CLI rendering. An unrecognized error keeps
// issue ID zero, which skips the catalog section.
func classifyResolutionError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	switch {
	case errors.Is(err, config.ErrNoBuildSystem):
		issueID = issue.NoBuildSystemId
	case errors.Is(err, config.ErrNoFrameworkStrategy):
		issueID = issue.StrategyNotFoundId
	case errors.Is(err, strategy.ErrUnknownStrategy):
		issueID = issue.StrategyNotFoundId
	case errors.Is(err, bazel.ErrNoBuildFile):
		issueID = issue.BuildFileNotFoundId
	case errors.Is(err, strategy.ErrNoTarget):
		issueID = issue.TargetNotFoundId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// classifyConfigLoadError maps configuration loading failures to issue
// catalog IDs. Parse failures in a file the user wrote get the parse-error
// entry; everything else gets the generic load-failure entry.
func classifyConfigLoadError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	issueID = issue.ConfigLoadFailedId

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		switch ae.Operation {
		case "load project configuration", "load override configuration":
			issueID = issue.ConfigParseErrorId
		}
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}
