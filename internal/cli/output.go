package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/kvquery/internal/value"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (bad query, missing identity, constraint, etc.)
	ExitCommandError = 2 // Command error (bad flags, schema not found, database unusable, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "MALFORMED_QUERY", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// Values are rendered as sorted-key JSON in both formats.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		if v, ok := data.(value.Value); ok {
			raw, err := value.Marshal(v)
			if err != nil {
				return fmt.Errorf("rendering value: %w", err)
			}
			data = json.RawMessage(raw)
		}
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	if v, ok := data.(value.Value); ok {
		return f.writeValue(v)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Values outputs a list of values: one JSON document per line in text
// mode, a data array in JSON mode.
func (f *OutputFormatter) Values(items []value.Value) error {
	if f.Format == "json" {
		return f.Success(value.Array(items))
	}
	for _, v := range items {
		if err := f.writeValue(v); err != nil {
			return err
		}
	}
	return nil
}

func (f *OutputFormatter) writeValue(v value.Value) error {
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Errorf("rendering value: %w", err)
	}
	_, err = fmt.Fprintln(f.Writer, string(data))
	return err
}

// encode writes one JSON envelope per line without HTML escaping, so
// rendered values pass through unchanged.
func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// Error outputs an error in the configured format. Text errors carry the
// code in brackets; details are shown only in verbose mode.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
