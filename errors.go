package modelfn

import (
	"errors"
	"fmt"
)

// Sentinel errors for modelfn. Use errors.Is to check.
var (
	ErrInvalidSignature  = errors.New("invalid function signature")
	ErrSchema            = errors.New("type cannot be described as a JSON schema")
	ErrMalformedResponse = errors.New("model response is not valid JSON")
	ErrValidation        = errors.New("validation failed")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrTimeout           = errors.New("tool execution timeout")
	ErrShutdown          = errors.New("registry is shutting down")
)

// SignatureError reports a structural violation in a declared function
// signature (missing description, missing return type, wrong argument count).
// Always fatal to that declaration; the caller must fix the declaration.
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid signature: %s", e.Reason)
}

func (e *SignatureError) Unwrap() error { return ErrInvalidSignature }

// SchemaError reports that a declared Go type could not be reduced to a
// JSON-Schema type (e.g. any/interface types). Fatal at construction time.
type SchemaError struct {
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Detail == "" {
		return ErrSchema.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSchema.Error(), e.Detail)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrSchema) match regardless of the wrapped cause.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// MalformedResponseError reports that the model's reply was not parseable as
// JSON. Surfaced to the Invoke caller; no automatic repair or retry.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedResponse.Error(), e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// ValidationError reports that a JSON value does not match the declared
// (possibly wrapped) schema. Detail carries the validator's structural
// mismatch message including the failing path.
type ValidationError struct {
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response validation failed: %s", e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ClientError is an error whose message is safe to send back to the model
// for self-correction (e.g. invalid JSON arguments, schema validation
// failure, bad enum value). Do not expose stack traces or internal details
// to the model. Err optionally wraps a sentinel (e.g. ErrValidation) for
// errors.Is/errors.As.
type ClientError struct {
	Reason string
	// Retryable is set by the application (not by modelfn). When true, the
	// orchestrator may retry the same call without changing arguments.
	Retryable bool
	Err       error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("invalid tool input: %s", e.Reason)
}

// Unwrap supports errors.Is/errors.As on wrapped chains.
func (e *ClientError) Unwrap() error { return e.Err }

// SystemError represents an internal failure (panic, marshal failure, etc.).
// The model should not see the underlying error message.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	return "internal system error during tool execution"
}

func (e *SystemError) Unwrap() error { return e.Err }

// IsClientError returns true if err is or wraps a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// IsSystemError returns true if err is or wraps a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// clientSafeMessage renders err as text that may be shown to the model:
// ClientError reasons pass through, everything else is redacted.
func clientSafeMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	if errors.Is(err, ErrUnknownTool) || errors.Is(err, ErrTimeout) {
		return err.Error()
	}
	return "tool execution failed"
}

// wrapJSONParseError returns a ClientError for JSON unmarshal failures so
// parse errors are consistent across Extractor and dynamic tools.
func wrapJSONParseError(err error) error {
	return &ClientError{Reason: "json parse error: " + err.Error()}
}
