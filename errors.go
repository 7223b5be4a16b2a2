package typedkv

import "fmt"

// EncodeError reports a value that could not be serialized for storage.
type EncodeError struct {
	Key string
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode for %q failed: %v", e.Key, e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports a malformed stored payload: truncated bytes, or a key
// written with a different encoding than the configured codec. Decode
// failures are never retried and never self-healed; the entry is left in
// place and the error surfaces to the caller.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode of %q failed: %v", e.Key, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// ScriptError reports a failed server-side atomic unit, e.g. a clamped
// increment against a key holding non-numeric data. Never silently coerced.
type ScriptError struct {
	Op  string
	Key string
	Err error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s on %q failed: %v", e.Op, e.Key, e.Err)
}
func (e *ScriptError) Unwrap() error { return e.Err }

// OpError wraps a transport or server failure with the operation and key it
// interrupted. The driver error is preserved for errors.Is/As, so
// context.Canceled and context.DeadlineExceeded pass through unchanged.
// This layer performs no retries; retry policy belongs to the connection
// layer underneath.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string { return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err) }
func (e *OpError) Unwrap() error { return e.Err }
