// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/runwk/runwk/internal/bazel"
	"github.com/runwk/runwk/internal/config"
	"github.com/runwk/runwk/internal/issue"
	"github.com/runwk/runwk/internal/strategy"
	"github.com/runwk/runwk/pkg/runnable"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic message: %s", msg)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestNewServiceError_ValidConstruction(t *testing.T) {
	t.Parallel()

	err := errors.New("test error")
	svcErr := newServiceError(err, issue.NoBuildSystemId, "styled message")

	if !errors.Is(svcErr.Err, err) {
		t.Errorf("Err = %v, want %v", svcErr.Err, err)
	}
	if svcErr.IssueID != issue.NoBuildSystemId {
		t.Errorf("IssueID = %d, want %d", svcErr.IssueID, issue.NoBuildSystemId)
	}
	if svcErr.StyledMessage != "styled message" {
		t.Errorf("StyledMessage = %q, want %q", svcErr.StyledMessage, "styled message")
	}
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, 0, "")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
}

func TestRenderServiceError_NilServiceError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderServiceError(&buf, nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output for nil ServiceError, got %q", buf.String())
	}
}

func TestRenderServiceError_StyledMessageOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	svcErr := newServiceError(errors.New("test"), 0, "styled output\n")
	renderServiceError(&buf, svcErr)

	if buf.String() != "styled output\n" {
		t.Errorf("output = %q, want %q", buf.String(), "styled output\n")
	}
}

func TestRenderServiceError_WithIssueID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	svcErr := newServiceError(errors.New("test"), issue.NoBuildSystemId, "")
	renderServiceError(&buf, svcErr)

	// Issue catalog entry should be rendered (contains the issue template content)
	if buf.String() == "" {
		t.Error("expected non-empty output when IssueID is set")
	}
}

func TestRenderServiceError_StyledMessageAndIssueID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	svcErr := newServiceError(errors.New("test"), issue.NoBuildSystemId, "styled: ")
	renderServiceError(&buf, svcErr)

	output := buf.String()
	// Should contain both the styled message prefix and the issue catalog content
	if len(output) <= len("styled: ") {
		t.Errorf("expected styled message + issue content, got only %q", output)
	}
}

func TestRenderServiceError_ZeroIssueIDSkipsCatalog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	svcErr := newServiceError(errors.New("test"), 0, "only this")
	renderServiceError(&buf, svcErr)

	if buf.String() != "only this" {
		t.Errorf("output = %q, want %q", buf.String(), "only this")
	}
}

func TestClassifyResolutionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		verbose     bool
		wantIssueID issue.Id
		wantInStyle []string
	}{
		{
			name:        "missing build system maps to build system issue",
			err:         fmt.Errorf("wrapped: %w", config.ErrNoBuildSystem),
			wantIssueID: issue.NoBuildSystemId,
			wantInStyle: []string{"Error:", "No build system specified"},
		},
		{
			name:        "missing framework strategy maps to strategy issue",
			err:         &config.NoStrategyError{Kind: runnable.FrameworkTest},
			wantIssueID: issue.StrategyNotFoundId,
			wantInStyle: []string{"No framework strategy for Test"},
		},
		{
			name:        "unknown strategy maps to strategy issue",
			err:         &strategy.UnknownStrategyError{Name: "gradle-test"},
			wantIssueID: issue.StrategyNotFoundId,
			wantInStyle: []string{"gradle-test"},
		},
		{
			name:        "missing BUILD file maps to build file issue",
			err:         fmt.Errorf("wrapped: %w", bazel.ErrNoBuildFile),
			wantIssueID: issue.BuildFileNotFoundId,
			wantInStyle: []string{"No BUILD file found"},
		},
		{
			name:        "missing bazel target maps to target issue",
			err:         fmt.Errorf("wrapped: %w", strategy.ErrNoTarget),
			wantIssueID: issue.TargetNotFoundId,
			wantInStyle: []string{"no matching target"},
		},
		{
			name:        "unknown error keeps zero issue ID",
			err:         errors.New("unexpected boom"),
			wantIssueID: 0,
			wantInStyle: []string{"unexpected boom"},
		},
		{
			name: "verbose actionable error includes chain",
			err: issue.NewErrorContext().
				WithOperation("find working directory").
				Wrap(errors.New("no manifest above file")).
				BuildError(),
			verbose:     true,
			wantIssueID: 0,
			wantInStyle: []string{"Error chain:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotIssueID, styled := classifyResolutionError(tt.err, tt.verbose)
			if gotIssueID != tt.wantIssueID {
				t.Fatalf("classifyResolutionError() issue ID = %v, want %v", gotIssueID, tt.wantIssueID)
			}

			for _, token := range tt.wantInStyle {
				if !strings.Contains(strings.ToLower(styled), strings.ToLower(token)) {
					t.Fatalf("styled message %q does not contain token %q", styled, token)
				}
			}
		})
	}
}

func TestClassifyConfigLoadError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantIssueID issue.Id
	}{
		{
			name: "project file parse failure maps to parse issue",
			err: issue.NewErrorContext().
				WithOperation("load project configuration").
				WithResource(".runwk.json").
				Wrap(errors.New("unexpected token")).
				BuildError(),
			wantIssueID: issue.ConfigParseErrorId,
		},
		{
			name: "overrides file parse failure maps to parse issue",
			err: issue.NewErrorContext().
				WithOperation("load override configuration").
				WithResource(".runwk-overrides.json").
				Wrap(errors.New("unexpected token")).
				BuildError(),
			wantIssueID: issue.ConfigParseErrorId,
		},
		{
			name: "other actionable failure maps to load issue",
			err: issue.NewErrorContext().
				WithOperation("resolve start directory").
				Wrap(errors.New("permission denied")).
				BuildError(),
			wantIssueID: issue.ConfigLoadFailedId,
		},
		{
			name:        "plain error maps to load issue",
			err:         errors.New("disk on fire"),
			wantIssueID: issue.ConfigLoadFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotIssueID, styled := classifyConfigLoadError(tt.err, false)
			if gotIssueID != tt.wantIssueID {
				t.Fatalf("classifyConfigLoadError() issue ID = %v, want %v", gotIssueID, tt.wantIssueID)
			}
			if !strings.Contains(styled, "Error:") {
				t.Fatalf("styled message %q does not contain the error prefix", styled)
			}
		})
	}
}
