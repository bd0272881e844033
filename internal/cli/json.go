package cli

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Global JSON output flag
var jsonOutput bool

// errReported marks errors that were already written as a JSON envelope.
var errReported = errors.New("error reported")

type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() []error { return []error{e.err, errReported} }

// Response is the standard JSON envelope for all CLI output.
type Response struct {
	OK       bool       `json:"ok"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Warnings []Warning  `json:"warnings,omitempty"`
	Meta     *Meta      `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning represents a non-fatal warning.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains metadata about the response.
type Meta struct {
	Count int `json:"count,omitempty"`
}

func outputJSON(resp Response) {
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(data any, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Meta: meta})
}

func outputSuccessWithWarnings(data any, warnings []Warning, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

func outputError(code, message string, details any, suggestion string) {
	outputJSON(Response{
		OK: false,
		Error: &ErrorInfo{
			Code:       code,
			Message:    message,
			Details:    details,
			Suggestion: suggestion,
		},
	})
}

func isJSONOutput() bool {
	return jsonOutput
}

// handleError reports err in the current output mode. In JSON mode the
// envelope is written and the returned error only carries the exit status.
func handleError(code string, err error, suggestion string) error {
	return handleErrorWithDetails(code, err, suggestion, nil)
}

// handleErrorWithDetails is handleError with structured details in JSON mode.
func handleErrorWithDetails(code string, err error, suggestion string, details any) error {
	if jsonOutput {
		outputError(code, err.Error(), details, suggestion)
		return &reportedError{err: err}
	}
	if suggestion != "" {
		return fmt.Errorf("%w\n\n%s", err, suggestion)
	}
	return err
}

// handleErrorMsg reports a plain message in the current output mode.
func handleErrorMsg(code, message, suggestion string) error {
	return handleError(code, errors.New(message), suggestion)
}
