// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrBrowserNotFound   = errors.New("chrome browser not found")
	ErrBrowserCrash      = errors.New("browser crashed")
	ErrTimeout           = errors.New("render timeout")
	ErrNavigatorClosed   = errors.New("navigator session closed")
	ErrScriptUnsupported = errors.New("page does not support script execution")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Session-level; these leave a site scrape.
	ErrCodeNavigation      ErrorCode = "NAVIGATION_FAILURE"
	ErrCodeBrowserCrash    ErrorCode = "BROWSER_CRASH"
	ErrCodeSessionTeardown ErrorCode = "SESSION_TEARDOWN_FAILURE"

	// Startup; the profile document could not be loaded.
	ErrCodeProfileInvalid ErrorCode = "PROFILE_INVALID"

	// Recovered locally; these only appear as log event codes.
	ErrCodeCandidateMiss   ErrorCode = "CANDIDATE_MISS"
	ErrCodeExtractionEmpty ErrorCode = "EXTRACTION_EMPTY"
	ErrCodeFieldParse      ErrorCode = "FIELD_PARSE_FAILURE"
)

// Sentinels for errors.Is matching by code
var (
	ErrNavigation      = &EngineError{Code: ErrCodeNavigation}
	ErrSessionTeardown = &EngineError{Code: ErrCodeSessionTeardown}
)

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Site       string
	Message    string
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	prefix := string(e.Code)
	if e.Site != "" {
		prefix += "[" + e.Site + "]"
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Retry:      false,
		Details:    make(map[string]interface{}),
	}
}

// NavigationError reports a failed render of url
func NavigationError(url string, err error) *EngineError {
	e := NewEngineError(ErrCodeNavigation, "render failed", err).WithDetail("url", url)
	if errors.Is(err, ErrBrowserCrash) {
		e.Code = ErrCodeBrowserCrash
	}
	return e
}

// WithRetry marks the error as retryable
func (e *EngineError) WithRetry() *EngineError {
	e.Retry = true
	return e
}

// WithSite tags the error with the site identifier
func (e *EngineError) WithSite(site string) *EngineError {
	e.Site = site
	return e
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}
