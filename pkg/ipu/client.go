package ipu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/contenttype"
)

// Device endpoints. The firmware routes everything through a handful of
// fixed pages; settings writes are form posts back to the page that
// displays them.
const (
	pageStatus     = "/status.xml"
	pageOutlet     = "/control_outlet.htm"
	pageConfigPDU  = "/config_PDU.htm"
	pageThresholds = "/config_threshold.htm"
	pageNetwork    = "/config_network.htm"
	pageUser       = "/config_user.htm"
)

// Factory defaults for the 163682 firmware.
const (
	DefaultUsername    = "admin"
	DefaultPassword    = "admin"
	DefaultOutletCount = 8

	defaultTimeout = 10 * time.Second

	// maxPageBytes bounds reads of device responses. The largest firmware
	// page is a few KB; anything past this is not a PDU.
	maxPageBytes = 1 << 20
)

// Client talks to one PDU's web management interface. The zero value is
// not usable; construct with New.
type Client struct {
	baseURL     string
	username    string
	password    string
	httpClient  *http.Client
	ownedClient bool
	outletCount int
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the management username and password.
// The device ships with admin/admin.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient supplies a caller-owned *http.Client. The Client never
// closes it, and WithTimeout has no effect on it; configure timeouts on
// the supplied client instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.ownedClient = false
	}
}

// WithTimeout sets the per-request timeout of the internally constructed
// HTTP client. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.ownedClient {
			c.httpClient.Timeout = d
		}
	}
}

// WithOutletCount overrides the number of physical outlets. The default
// matches the 8-outlet 163682; the 19" 163683 variant has the same
// firmware with a different outlet count.
func WithOutletCount(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.outletCount = n
		}
	}
}

// New creates a client for the device at baseURL (e.g.
// "http://192.168.0.100"). No network call is made until the first
// operation.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		username:    DefaultUsername,
		password:    DefaultPassword,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		ownedClient: true,
		outletCount: DefaultOutletCount,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OutletCount returns the number of physical outlets this client validates
// indices against.
func (c *Client) OutletCount() int { return c.outletCount }

// Host returns the host (without port) of the device base URL, or "" when
// the base URL does not parse.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	if h, _, err := net.SplitHostPort(u.Host); err == nil {
		return h
	}
	return u.Host
}

// Login verifies the configured credentials with an authenticated probe of
// the status page. The firmware uses HTTP Basic auth on every request, so
// there is no session to establish; Login exists to surface bad
// credentials or an unreachable device before the first real operation.
func (c *Client) Login(ctx context.Context) error {
	if _, err := c.GetStatus(ctx); err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return err
		}
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			// Reached and authenticated; an unknown page layout is not a
			// login failure.
			return nil
		}
		return &AuthenticationError{Host: c.Host(), Cause: err}
	}
	return nil
}

// SetOutlet applies a command to a single outlet. The index is validated
// against OutletCount before any request; setting an outlet to a state it
// is already in succeeds and still issues the request.
func (c *Client) SetOutlet(ctx context.Context, index int, cmd Command) error {
	return c.SetOutlets(ctx, cmd, index)
}

// SetOutlets applies one command to several outlets in a single request,
// the way the web UI's checkbox form does. All indices are validated
// before anything is sent.
func (c *Client) SetOutlets(ctx context.Context, cmd Command, indices ...int) error {
	if len(indices) == 0 {
		return &ValidationError{Field: "indices", Reason: "at least one outlet required"}
	}
	if cmd < CommandOn || cmd > CommandCycle {
		return &ValidationError{Field: "command", Reason: fmt.Sprintf("unknown command %d", int(cmd))}
	}
	for _, idx := range indices {
		if idx < 1 || idx > c.outletCount {
			return &InvalidOutletError{Index: idx, Count: c.outletCount}
		}
	}

	params := url.Values{}
	for _, idx := range indices {
		params.Set(fmt.Sprintf("outlet%d", idx-1), "1")
	}
	params.Set("op", strconv.Itoa(int(cmd)))
	// The firmware only acts when the form's submit value is present.
	params.Set("submit", "Anwenden")

	_, _, err := c.get(ctx, "set outlets", pageOutlet, params)
	return err
}

// GetStatus fetches and parses the status page.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	body, _, err := c.get(ctx, "get status", pageStatus, nil)
	if err != nil {
		return nil, err
	}
	return parseStatus(body, c.outletCount)
}

// GetOutletStates returns one record per physical outlet, in index order.
// Names are not populated; labels live on the outlet config page, see
// GetOutletConfigs.
func (c *Client) GetOutletStates(ctx context.Context) ([]Outlet, error) {
	status, err := c.GetStatus(ctx)
	if err != nil {
		return nil, err
	}
	outlets := make([]Outlet, len(status.OutletStates))
	for i, st := range status.OutletStates {
		outlets[i] = Outlet{Index: i + 1, State: st}
	}
	return outlets, nil
}

// GetTelemetry reads a voltage/current measurement. outlet 0 returns the
// bank aggregate; a positive outlet returns that outlet's current reading
// (voltage is the shared bank feed either way).
func (c *Client) GetTelemetry(ctx context.Context, outlet int) (*Telemetry, error) {
	if outlet < 0 || outlet > c.outletCount {
		return nil, &InvalidOutletError{Index: outlet, Count: c.outletCount}
	}
	body, _, err := c.get(ctx, "get telemetry", pageStatus, nil)
	if err != nil {
		return nil, err
	}
	return parseTelemetry(body, outlet)
}

// GetOutletConfigs reads name and switching delays for every outlet.
func (c *Client) GetOutletConfigs(ctx context.Context) ([]OutletConfig, error) {
	body, _, err := c.get(ctx, "get outlet config", pageConfigPDU, nil)
	if err != nil {
		return nil, err
	}
	return parseOutletConfigs(body, c.outletCount)
}

// SetOutletConfigs writes name and switching delays for every outlet. The
// firmware form has no partial-update support: exactly OutletCount entries
// must be supplied.
func (c *Client) SetOutletConfigs(ctx context.Context, configs []OutletConfig) error {
	if len(configs) != c.outletCount {
		return &ValidationError{
			Field:  "configs",
			Reason: fmt.Sprintf("need exactly %d entries, got %d", c.outletCount, len(configs)),
		}
	}
	form := url.Values{}
	for i, cfg := range configs {
		if cfg.TurnOnDelay < 0 || cfg.TurnOffDelay < 0 {
			return &ValidationError{Field: "configs", Reason: fmt.Sprintf("outlet %d: negative delay", i+1)}
		}
		form.Set(fmt.Sprintf("otlt%d", i), cfg.Name)
		form.Set(fmt.Sprintf("ondly%d", i), strconv.Itoa(cfg.TurnOnDelay))
		form.Set(fmt.Sprintf("ofdly%d", i), strconv.Itoa(cfg.TurnOffDelay))
	}
	return c.post(ctx, "set outlet config", pageConfigPDU, form)
}

// GetThresholds reads the alarm thresholds.
func (c *Client) GetThresholds(ctx context.Context) (*Thresholds, error) {
	body, _, err := c.get(ctx, "get thresholds", pageThresholds, nil)
	if err != nil {
		return nil, err
	}
	return parseThresholds(body)
}

// SetThresholds writes the alarm thresholds.
func (c *Client) SetThresholds(ctx context.Context, t *Thresholds) error {
	if t.WarningAmps < 0 || t.OverloadAmps < 0 {
		return &ValidationError{Field: "thresholds", Reason: "negative current threshold"}
	}
	if t.OverloadAmps < t.WarningAmps {
		return &ValidationError{Field: "thresholds", Reason: "overload current below warning current"}
	}
	if t.WarningVolts < 0 || t.OverloadVolts < t.WarningVolts {
		return &ValidationError{Field: "thresholds", Reason: "overload voltage below warning voltage"}
	}
	if t.WarningTempOverC < t.WarningTempUnderC {
		return &ValidationError{Field: "thresholds", Reason: "temperature band is inverted"}
	}
	form := url.Values{
		"wrncur": {formatAmps(t.WarningAmps)},
		"ovrcur": {formatAmps(t.OverloadAmps)},
		"wrnvol": {strconv.Itoa(t.WarningVolts)},
		"ovrvol": {strconv.Itoa(t.OverloadVolts)},
		"wrntp1": {strconv.Itoa(t.WarningTempUnderC)},
		"wrntp2": {strconv.Itoa(t.WarningTempOverC)},
		"wrnhum": {strconv.Itoa(t.WarningHumidityPercent)},
	}
	return c.post(ctx, "set thresholds", pageThresholds, form)
}

// GetNetworkConfig reads the device network identity and the management
// username. The firmware never echoes the password; the returned
// NetworkConfig has Password empty.
func (c *Client) GetNetworkConfig(ctx context.Context) (*NetworkConfig, error) {
	netBody, _, err := c.get(ctx, "get network config", pageNetwork, nil)
	if err != nil {
		return nil, err
	}
	cfg, err := parseNetworkPage(netBody)
	if err != nil {
		return nil, err
	}

	userBody, _, err := c.get(ctx, "get user config", pageUser, nil)
	if err != nil {
		return nil, err
	}
	username, err := parseUserPage(userBody)
	if err != nil {
		return nil, err
	}
	cfg.Username = username
	return cfg, nil
}

// SetNetworkConfig writes the device network identity and, when Username
// is set, the management credentials. Fields are validated before any
// request; there are no partial updates within a page.
func (c *Client) SetNetworkConfig(ctx context.Context, cfg *NetworkConfig) error {
	for _, f := range []struct{ name, value string }{
		{"ip", cfg.IP},
		{"mask", cfg.Mask},
		{"gateway", cfg.Gateway},
	} {
		if net.ParseIP(f.value) == nil {
			return &ValidationError{Field: f.name, Reason: fmt.Sprintf("%q is not an IP address", f.value)}
		}
	}
	if cfg.DNS != "" && net.ParseIP(cfg.DNS) == nil {
		return &ValidationError{Field: "dns", Reason: fmt.Sprintf("%q is not an IP address", cfg.DNS)}
	}
	if cfg.Username != "" && cfg.Password == "" {
		return &ValidationError{Field: "password", Reason: "required when setting username"}
	}

	form := url.Values{
		"ip":  {cfg.IP},
		"msk": {cfg.Mask},
		"gw":  {cfg.Gateway},
	}
	if cfg.DNS != "" {
		form.Set("dns", cfg.DNS)
	}
	if err := c.post(ctx, "set network config", pageNetwork, form); err != nil {
		return err
	}

	if cfg.Username != "" {
		userForm := url.Values{
			"unm": {cfg.Username},
			"pwd": {cfg.Password},
		}
		if err := c.post(ctx, "set user config", pageUser, userForm); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot fetches status, outlet configs, and thresholds concurrently.
// The first failure cancels the remaining fetches and is returned.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status, err := c.GetStatus(ctx)
		if err != nil {
			return err
		}
		snap.Status = *status
		return nil
	})
	g.Go(func() error {
		configs, err := c.GetOutletConfigs(ctx)
		if err != nil {
			return err
		}
		snap.OutletConfigs = configs
		return nil
	})
	g.Go(func() error {
		thresholds, err := c.GetThresholds(ctx)
		if err != nil {
			return err
		}
		snap.Thresholds = *thresholds
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// get issues an authenticated GET and returns the decoded body and the
// Content-Type header. op names the operation for error messages and logs.
func (c *Client) get(ctx context.Context, op, page string, params url.Values) ([]byte, string, error) {
	u := c.baseURL + page
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", &CommunicationError{Op: op, Cause: err}
	}
	return c.do(op, page, req)
}

// post issues an authenticated form POST. The body is read and discarded;
// the firmware answers settings posts with a page re-render.
func (c *Client) post(ctx context.Context, op, page string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+page,
		strings.NewReader(form.Encode()))
	if err != nil {
		return &CommunicationError{Op: op, Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, _, err = c.do(op, page, req)
	return err
}

func (c *Client) do(op, page string, req *http.Request) ([]byte, string, error) {
	start := time.Now()
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("device request failed",
			slog.String("op", op),
			slog.String("page", page),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, "", &CommunicationError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, "", &AuthenticationError{Host: c.Host()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &CommunicationError{Op: op, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := readBody(resp.Body, contentType)
	if err != nil {
		return nil, "", &CommunicationError{Op: op, Cause: err}
	}

	slog.Debug("device request completed",
		slog.String("op", op),
		slog.String("page", page),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return body, contentType, nil
}

// readBody reads a bounded response body, decoding the legacy charsets the
// firmware declares (the pages predate UTF-8 defaults).
func readBody(r io.Reader, contentType string) ([]byte, error) {
	r = io.LimitReader(r, maxPageBytes)
	if dec := charsetDecoder(contentType); dec != nil {
		r = transform.NewReader(r, dec)
	}
	return io.ReadAll(r)
}

func charsetDecoder(contentType string) transform.Transformer {
	switch contenttype.Charset(contentType) {
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder()
	case "windows-1252":
		return charmap.Windows1252.NewDecoder()
	default:
		return nil
	}
}

func formatAmps(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
