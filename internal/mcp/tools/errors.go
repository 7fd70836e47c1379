package tools

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/udpquery"
)

// Error codes for MCP tool responses.
const (
	ErrCodeAuthFailed    = "AUTH_FAILED"
	ErrCodeInvalidOutlet = "INVALID_OUTLET"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeDeviceError   = "DEVICE_ERROR"
	ErrCodeParseError    = "PARSE_ERROR"
	ErrCodeTimeout       = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapDeviceError maps the typed client errors onto tool error codes. The
// distinction matters to callers: INVALID_OUTLET and INVALID_INPUT mean
// nothing was sent to the device, PARSE_ERROR means the device answered
// but with markup this build does not recognize.
func WrapDeviceError(err error) error {
	if err == nil {
		return nil
	}

	coded := &CodedError{Code: ErrCodeDeviceError, Message: err.Error(), Cause: err}

	var authErr *ipu.AuthenticationError
	var outletErr *ipu.InvalidOutletError
	var validationErr *ipu.ValidationError
	var parseErr *ipu.ParseError
	var timeoutErr *udpquery.TimeoutError
	var protocolErr *udpquery.ProtocolError

	switch {
	case errors.As(err, &authErr):
		coded.Code = ErrCodeAuthFailed
	case errors.As(err, &outletErr):
		coded.Code = ErrCodeInvalidOutlet
	case errors.As(err, &validationErr):
		coded.Code = ErrCodeInvalidInput
	case errors.As(err, &parseErr):
		coded.Code = ErrCodeParseError
	case errors.As(err, &protocolErr):
		coded.Code = ErrCodeParseError
	case errors.As(err, &timeoutErr):
		coded.Code = ErrCodeTimeout
	}

	slog.Warn("device operation failed",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
