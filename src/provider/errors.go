package provider

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailed  = errors.New("authentication failed")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
)

// FetchError reports a failed hosting-API lookup. It is terminal for the run.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// LogFetchError reports a failed job log download. It is recovered locally
// by the fetcher and never propagated.
type LogFetchError struct {
	JobID int64
	Err   error
}

func (e *LogFetchError) Error() string {
	return fmt.Sprintf("fetch logs for job %d: %v", e.JobID, e.Err)
}

func (e *LogFetchError) Unwrap() error {
	return e.Err
}

// ConfigError reports a missing or invalid configuration value.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("option %q is required but not provided", e.Option)
	}
	return fmt.Sprintf("option %q: %s", e.Option, e.Reason)
}

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts API errors to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return &UserError{
			Message: "Missing configuration",
			Hint:    "Pass the value as a flag or set it in the environment.\n  - Splunk: SPLUNK_URL, SPLUNK_TOKEN\n  - GitHub: GITHUB_TOKEN, GITHUB_REPOSITORY",
			Err:     err,
		}
	}

	if errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrInvalidRepository) {
		return &UserError{
			Message: "Invalid workflow run reference",
			Hint:    "Supported formats:\n  - owner/repo with --run-id 456\n  - https://github.com/owner/repo/actions/runs/456",
			Err:     err,
		}
	}

	if errors.Is(err, ErrAuthFailed) {
		return &UserError{
			Message: "Authentication failed",
			Hint:    "Check that GITHUB_TOKEN is valid and has actions:read permission on the repository.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrNotFound) {
		return &UserError{
			Message: "Workflow run or repository not found",
			Hint:    "Check that the run ID is correct and you have access to the repository.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrRateLimited) {
		return &UserError{
			Message: "GitHub API rate limit exceeded",
			Hint:    "Wait for the rate limit window to reset or lower --github-rps for batch runs.",
			Err:     err,
		}
	}

	return err
}
