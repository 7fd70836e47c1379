// Package udpquery reads voltage over the PDU's UDP query channel.
//
// The channel is a single-shot request/response: one fixed 5-byte query
// datagram out, one fixed 13-byte reading back. It needs no credentials
// and works when the web interface is wedged, which is exactly when you
// want to know what the feed is doing. Retries are the caller's business;
// the client sends each query exactly once.
package udpquery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// DefaultPort is the port the firmware's query responder listens on.
const DefaultPort = 50000

// Wire format. Both directions carry a trailing ones-complement checksum
// over the preceding bytes.
var (
	queryVoltage  = []byte{0xa7, 0x40, 0x06, 0x00}
	responseMagic = []byte{0xa7, 0x42, 0x06, 0x08}
)

const (
	responseLen    = 13 // magic(4) + payload(8) + checksum(1)
	defaultTimeout = 2 * time.Second
)

// TimeoutError reports that the device sent no response within the bound.
type TimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("udpquery: no response within %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// ProtocolError reports a response that arrived but is not a valid
// voltage reading.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "udpquery: " + e.Reason
}

// Client queries one PDU. Construction opens no socket; each query owns
// an ephemeral socket for its own lifetime.
type Client struct {
	host    string
	port    int
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds how long QueryVoltage waits for a response.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for the device at host. Pass port 0 for
// DefaultPort.
func New(host string, port int, opts ...Option) *Client {
	if port == 0 {
		port = DefaultPort
	}
	c := &Client{host: host, port: port, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryVoltage sends one voltage query and waits for the reading. The
// socket is opened for this call only and closed on every path. An
// earlier deadline on ctx tightens the wait; the client's timeout is the
// upper bound either way.
func (c *Client) QueryVoltage(ctx context.Context) (int, error) {
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return 0, fmt.Errorf("udpquery: dial %s: %w", addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return 0, fmt.Errorf("udpquery: set deadline: %w", err)
	}

	if _, err := conn.Write(withChecksum(queryVoltage)); err != nil {
		if isTimeout(err) {
			return 0, &TimeoutError{Timeout: c.timeout, Cause: err}
		}
		return 0, fmt.Errorf("udpquery: send query: %w", err)
	}

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return 0, &TimeoutError{Timeout: c.timeout, Cause: err}
		}
		return 0, fmt.Errorf("udpquery: read response: %w", err)
	}

	return parseVoltageResponse(buf[:n])
}

func parseVoltageResponse(data []byte) (int, error) {
	if len(data) != responseLen {
		return 0, &ProtocolError{Reason: fmt.Sprintf("response is %d bytes, want %d", len(data), responseLen)}
	}
	for i, b := range responseMagic {
		if data[i] != b {
			return 0, &ProtocolError{Reason: fmt.Sprintf("bad response magic % x", data[:len(responseMagic)])}
		}
	}
	if sum := checksum(data[:responseLen-1]); data[responseLen-1] != sum {
		return 0, &ProtocolError{
			Reason: fmt.Sprintf("checksum mismatch: got 0x%02x, want 0x%02x", data[responseLen-1], sum),
		}
	}
	// Payload byte 0 is the bank voltage in whole volts.
	return int(data[len(responseMagic)]), nil
}

// checksum folds a ones-complement byte sum, matching the firmware's
// algorithm.
func checksum(msg []byte) byte {
	sum := 0
	for _, b := range msg {
		sum += int(b)
		sum = (sum & 0xff) + (sum >> 16)
	}
	return byte(sum)
}

func withChecksum(msg []byte) []byte {
	out := make([]byte, 0, len(msg)+1)
	out = append(out, msg...)
	return append(out, checksum(msg))
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
