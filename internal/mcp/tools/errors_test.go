package tools

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/ipu"
	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/udpquery"
)

func TestWrapDeviceError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"auth", &ipu.AuthenticationError{Host: "192.168.0.100"}, ErrCodeAuthFailed},
		{"invalid outlet", &ipu.InvalidOutletError{Index: 9, Count: 8}, ErrCodeInvalidOutlet},
		{"validation", &ipu.ValidationError{Field: "ip", Reason: "not an IP"}, ErrCodeInvalidInput},
		{"parse", &ipu.ParseError{Page: "/status.xml", Reason: "missing element"}, ErrCodeParseError},
		{"udp timeout", &udpquery.TimeoutError{Timeout: 2 * time.Second}, ErrCodeTimeout},
		{"udp protocol", &udpquery.ProtocolError{Reason: "bad magic"}, ErrCodeParseError},
		{"communication", &ipu.CommunicationError{Op: "get status", StatusCode: 500}, ErrCodeDeviceError},
		{"unknown", errors.New("boom"), ErrCodeDeviceError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := WrapDeviceError(tc.err)
			var coded *CodedError
			require.ErrorAs(t, wrapped, &coded)
			assert.Equal(t, tc.code, coded.Code)
			assert.ErrorIs(t, wrapped, tc.err)
		})
	}
}

func TestWrapDeviceErrorSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("snapshot: %w", &ipu.AuthenticationError{Host: "pdu"})

	var coded *CodedError
	require.ErrorAs(t, WrapDeviceError(err), &coded)
	assert.Equal(t, ErrCodeAuthFailed, coded.Code)
}

func TestWrapDeviceErrorNil(t *testing.T) {
	assert.NoError(t, WrapDeviceError(nil))
}

func TestErrInvalidInput(t *testing.T) {
	err := ErrInvalidInput("outlet index required")
	var coded *CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, ErrCodeInvalidInput, coded.Code)
	assert.Contains(t, err.Error(), "INVALID_INPUT: outlet index required")
}
