package ipu

import "fmt"

// AuthenticationError reports rejected credentials or a device that could
// not be reached during login.
type AuthenticationError struct {
	Host  string
	Cause error
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ipu: authentication with %s failed: %v", e.Host, e.Cause)
	}
	return fmt.Sprintf("ipu: authentication with %s failed", e.Host)
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

// InvalidOutletError reports an outlet index outside [1, Count]. It is
// returned before any request is sent.
type InvalidOutletError struct {
	Index int
	Count int
}

func (e *InvalidOutletError) Error() string {
	return fmt.Sprintf("ipu: outlet %d out of range [1, %d]", e.Index, e.Count)
}

// ValidationError reports malformed input caught before any request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ipu: invalid %s: %s", e.Field, e.Reason)
}

// CommunicationError reports a network failure, timeout, or unexpected
// HTTP status from the device. StatusCode is 0 when no response arrived.
type CommunicationError struct {
	Op         string
	StatusCode int
	Cause      error
}

func (e *CommunicationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ipu: %s: device returned HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("ipu: %s: %v", e.Op, e.Cause)
}

func (e *CommunicationError) Unwrap() error { return e.Cause }

// ParseError reports a response that arrived but whose markup does not
// match the structure this client expects. It usually means a firmware
// revision with different pages. A ParseError never carries partial data.
type ParseError struct {
	Page   string
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ipu: parsing %s: %s: %v", e.Page, e.Reason, e.Cause)
	}
	return fmt.Sprintf("ipu: parsing %s: %s", e.Page, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Cause }
