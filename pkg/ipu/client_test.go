package ipu

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePDU emulates the firmware's web interface closely enough to exercise
// the client end to end: Basic auth on every page, outlet commands via GET
// query parameters, and settings pages that render the values a POST stored.
type fakePDU struct {
	mu       sync.Mutex
	requests atomic.Int64

	username string
	password string

	states     [8]OutletState
	configs    [8]OutletConfig
	thresholds Thresholds
	ip, mask, gateway, dns string
}

func newFakePDU() *fakePDU {
	f := &fakePDU{
		username: DefaultUsername,
		password: DefaultPassword,
		ip:       "192.168.0.100",
		mask:     "255.255.255.0",
		gateway:  "192.168.0.1",
		dns:      "192.168.0.1",
		thresholds: Thresholds{
			WarningAmps:            8.5,
			OverloadAmps:           10,
			WarningVolts:           200,
			OverloadVolts:          250,
			WarningTempUnderC:      5,
			WarningTempOverC:       45,
			WarningHumidityPercent: 85,
		},
	}
	for i := range f.states {
		f.states[i] = OutletOn
		f.configs[i] = OutletConfig{Name: fmt.Sprintf("outlet%d", i+1)}
	}
	return f
}

func (f *fakePDU) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	user, pass, ok := r.BasicAuth()
	if !ok || user != f.username || pass != f.password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.URL.Path {
	case pageStatus:
		f.writeStatus(w)
	case pageOutlet:
		f.applyOutletCommand(r)
		f.writeStatus(w)
	case pageConfigPDU:
		if r.Method == http.MethodPost {
			f.storeOutletConfigs(r)
		}
		f.writeOutletConfigs(w)
	case pageThresholds:
		if r.Method == http.MethodPost {
			f.storeThresholds(r)
		}
		f.writeThresholds(w)
	case pageNetwork:
		if r.Method == http.MethodPost {
			r.ParseForm()
			f.ip = r.PostForm.Get("ip")
			f.mask = r.PostForm.Get("msk")
			f.gateway = r.PostForm.Get("gw")
			f.dns = r.PostForm.Get("dns")
		}
		fmt.Fprintf(w, `<html><body><form>
<input name="ip" value=%q><input name="msk" value=%q>
<input name="gw" value=%q><input name="dns" value=%q>
</form></body></html>`, f.ip, f.mask, f.gateway, f.dns)
	case pageUser:
		if r.Method == http.MethodPost {
			r.ParseForm()
			f.username = r.PostForm.Get("unm")
			f.password = r.PostForm.Get("pwd")
		}
		fmt.Fprintf(w, `<html><body><form>
<input name="unm" value=%q><input type="password" name="pwd" value="">
</form></body></html>`, f.username)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakePDU) writeStatus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/xml")
	var b bytes.Buffer
	b.WriteString("<response><cur0>0.5</cur0><vol0>230</vol0>")
	b.WriteString("<tempCBan>26</tempCBan><humBan>27</humBan><stat0>normal</stat0>")
	for i, st := range f.states {
		fmt.Fprintf(&b, "<outletStat%d>%s</outletStat%d>", i, st, i)
		fmt.Fprintf(&b, "<outletCur%d>0.1</outletCur%d>", i, i)
	}
	b.WriteString("</response>")
	w.Write(b.Bytes())
}

func (f *fakePDU) applyOutletCommand(r *http.Request) {
	q := r.URL.Query()
	if q.Get("submit") == "" {
		return
	}
	op, err := strconv.Atoi(q.Get("op"))
	if err != nil {
		return
	}
	for i := range f.states {
		if q.Get(fmt.Sprintf("outlet%d", i)) != "1" {
			continue
		}
		switch Command(op) {
		case CommandOn, CommandCycle:
			f.states[i] = OutletOn
		case CommandOff:
			f.states[i] = OutletOff
		}
	}
}

func (f *fakePDU) storeOutletConfigs(r *http.Request) {
	r.ParseForm()
	for i := range f.configs {
		f.configs[i].Name = r.PostForm.Get(fmt.Sprintf("otlt%d", i))
		f.configs[i].TurnOnDelay, _ = strconv.Atoi(r.PostForm.Get(fmt.Sprintf("ondly%d", i)))
		f.configs[i].TurnOffDelay, _ = strconv.Atoi(r.PostForm.Get(fmt.Sprintf("ofdly%d", i)))
	}
}

func (f *fakePDU) writeOutletConfigs(w http.ResponseWriter) {
	var b bytes.Buffer
	b.WriteString("<html><body><form><table>")
	b.WriteString("<tr><th>Outlet</th><th>Name</th><th>On</th><th>Off</th></tr>")
	for i, cfg := range f.configs {
		fmt.Fprintf(&b, `<tr><td>%d</td><td><input name="otlt%d" value=%q></td>`+
			`<td><input name="ondly%d" value="%d"></td>`+
			`<td><input name="ofdly%d" value="%d"></td></tr>`,
			i+1, i, cfg.Name, i, cfg.TurnOnDelay, i, cfg.TurnOffDelay)
	}
	b.WriteString("</table><input type=\"submit\" name=\"submit\" value=\"Anwenden\"></form></body></html>")
	w.Write(b.Bytes())
}

func (f *fakePDU) storeThresholds(r *http.Request) {
	r.ParseForm()
	f.thresholds.WarningAmps, _ = strconv.ParseFloat(r.PostForm.Get("wrncur"), 64)
	f.thresholds.OverloadAmps, _ = strconv.ParseFloat(r.PostForm.Get("ovrcur"), 64)
	f.thresholds.WarningVolts, _ = strconv.Atoi(r.PostForm.Get("wrnvol"))
	f.thresholds.OverloadVolts, _ = strconv.Atoi(r.PostForm.Get("ovrvol"))
	f.thresholds.WarningTempUnderC, _ = strconv.Atoi(r.PostForm.Get("wrntp1"))
	f.thresholds.WarningTempOverC, _ = strconv.Atoi(r.PostForm.Get("wrntp2"))
	f.thresholds.WarningHumidityPercent, _ = strconv.Atoi(r.PostForm.Get("wrnhum"))
}

func (f *fakePDU) writeThresholds(w http.ResponseWriter) {
	t := f.thresholds
	fmt.Fprintf(w, `<html><body><form>
<input name="wrncur" value="%s"><input name="ovrcur" value="%s">
<input name="wrnvol" value="%d"><input name="ovrvol" value="%d">
<input name="wrntp1" value="%d"><input name="wrntp2" value="%d">
<input name="wrnhum" value="%d">
</form></body></html>`,
		formatAmps(t.WarningAmps), formatAmps(t.OverloadAmps),
		t.WarningVolts, t.OverloadVolts,
		t.WarningTempUnderC, t.WarningTempOverC, t.WarningHumidityPercent)
}

func (f *fakePDU) state(i int) OutletState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[i]
}

func (f *fakePDU) setState(i int, st OutletState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[i] = st
}

func (f *fakePDU) creds() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username, f.password
}

func (f *fakePDU) netInfo() (ip, gateway string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ip, f.gateway
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakePDU) {
	t.Helper()
	pdu := newFakePDU()
	srv := httptest.NewServer(pdu)
	t.Cleanup(srv.Close)
	return New(srv.URL, opts...), pdu
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Login(context.Background()))
}

func TestLoginBadCredentials(t *testing.T) {
	client, _ := newTestClient(t, WithCredentials("admin", "wrong"))

	err := client.Login(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "127.0.0.1", authErr.Host)
}

func TestLoginUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL)

	err := client.Login(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Error(t, authErr.Cause)
}

func TestLoginToleratesUnknownPageLayout(t *testing.T) {
	// A reachable, authenticated device with an unrecognized status page
	// is still a successful login.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body>firmware v2 status</body></html>")
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL)
	require.NoError(t, client.Login(context.Background()))
}

func TestSetOutlet(t *testing.T) {
	client, pdu := newTestClient(t)

	require.NoError(t, client.SetOutlet(context.Background(), 3, CommandOff))
	assert.Equal(t, OutletOff, pdu.state(2))
	assert.Equal(t, OutletOn, pdu.state(0), "other outlets untouched")
}

func TestSetOutletInvalidIndex(t *testing.T) {
	client, pdu := newTestClient(t)

	for _, idx := range []int{0, -1, 9} {
		err := client.SetOutlet(context.Background(), idx, CommandOn)
		var invErr *InvalidOutletError
		require.ErrorAs(t, err, &invErr, "index %d", idx)
		assert.Equal(t, idx, invErr.Index)
		assert.Equal(t, 8, invErr.Count)
	}
	assert.EqualValues(t, 0, pdu.requests.Load(), "validation must reject before any request")
}

func TestSetOutletRepeatIssuesEachRequest(t *testing.T) {
	// Commanding an outlet into the state it already holds is not
	// short-circuited; the device is the source of truth.
	client, pdu := newTestClient(t)

	require.NoError(t, client.SetOutlet(context.Background(), 5, CommandOff))
	require.NoError(t, client.SetOutlet(context.Background(), 5, CommandOff))
	assert.EqualValues(t, 2, pdu.requests.Load())
	assert.Equal(t, OutletOff, pdu.state(4))
}

func TestSetOutletsRejectsAllOnOneBadIndex(t *testing.T) {
	client, pdu := newTestClient(t)

	err := client.SetOutlets(context.Background(), CommandOff, 1, 2, 42)
	var invErr *InvalidOutletError
	require.ErrorAs(t, err, &invErr)
	assert.EqualValues(t, 0, pdu.requests.Load())
	assert.Equal(t, OutletOn, pdu.state(0), "no partial application")
}

func TestSetOutletsMultiple(t *testing.T) {
	client, pdu := newTestClient(t)

	require.NoError(t, client.SetOutlets(context.Background(), CommandOff, 1, 2, 8))
	assert.Equal(t, OutletOff, pdu.state(0))
	assert.Equal(t, OutletOff, pdu.state(1))
	assert.Equal(t, OutletOff, pdu.state(7))
	assert.Equal(t, OutletOn, pdu.state(3))
	assert.EqualValues(t, 1, pdu.requests.Load(), "one request covers all outlets")
}

func TestGetOutletStates(t *testing.T) {
	client, pdu := newTestClient(t)
	pdu.setState(1, OutletOff)

	outlets, err := client.GetOutletStates(context.Background())
	require.NoError(t, err)
	require.Len(t, outlets, 8)
	assert.Equal(t, Outlet{Index: 1, State: OutletOn}, outlets[0])
	assert.Equal(t, Outlet{Index: 2, State: OutletOff}, outlets[1])
}

func TestGetTelemetry(t *testing.T) {
	client, _ := newTestClient(t)

	tele, err := client.GetTelemetry(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 230, tele.VoltageVolts)
	assert.Equal(t, 0.5, tele.CurrentAmps)

	tele, err = client.GetTelemetry(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, tele.Outlet)
	assert.Equal(t, 0.1, tele.CurrentAmps)
}

func TestGetTelemetryInvalidOutlet(t *testing.T) {
	client, pdu := newTestClient(t)

	_, err := client.GetTelemetry(context.Background(), 9)
	var invErr *InvalidOutletError
	require.ErrorAs(t, err, &invErr)
	assert.EqualValues(t, 0, pdu.requests.Load())
}

func TestOutletConfigRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)

	want := make([]OutletConfig, 8)
	for i := range want {
		want[i] = OutletConfig{
			Name:         fmt.Sprintf("device-%d", i+1),
			TurnOnDelay:  i,
			TurnOffDelay: i * 2,
		}
	}
	require.NoError(t, client.SetOutletConfigs(context.Background(), want))

	got, err := client.GetOutletConfigs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSetOutletConfigsWrongCount(t *testing.T) {
	client, pdu := newTestClient(t)

	err := client.SetOutletConfigs(context.Background(), []OutletConfig{{Name: "only-one"}})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.EqualValues(t, 0, pdu.requests.Load())
}

func TestThresholdsRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)

	want := &Thresholds{
		WarningAmps:            6.5,
		OverloadAmps:           9,
		WarningVolts:           210,
		OverloadVolts:          245,
		WarningTempUnderC:      10,
		WarningTempOverC:       40,
		WarningHumidityPercent: 80,
	}
	require.NoError(t, client.SetThresholds(context.Background(), want))

	got, err := client.GetThresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSetThresholdsInvalid(t *testing.T) {
	client, pdu := newTestClient(t)

	cases := map[string]*Thresholds{
		"overload current below warning": {WarningAmps: 10, OverloadAmps: 5, OverloadVolts: 250},
		"overload voltage below warning": {OverloadAmps: 10, WarningVolts: 250, OverloadVolts: 200},
		"inverted temperature band":      {OverloadAmps: 10, OverloadVolts: 250, WarningTempUnderC: 50, WarningTempOverC: 10},
		"negative current":               {WarningAmps: -1, OverloadAmps: 10, OverloadVolts: 250},
	}
	for name, th := range cases {
		err := client.SetThresholds(context.Background(), th)
		var valErr *ValidationError
		assert.ErrorAs(t, err, &valErr, name)
	}
	assert.EqualValues(t, 0, pdu.requests.Load())
}

func TestGetNetworkConfig(t *testing.T) {
	client, _ := newTestClient(t)

	cfg, err := client.GetNetworkConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.100", cfg.IP)
	assert.Equal(t, "255.255.255.0", cfg.Mask)
	assert.Equal(t, "192.168.0.1", cfg.Gateway)
	assert.Equal(t, "192.168.0.1", cfg.DNS)
	assert.Equal(t, "admin", cfg.Username)
	assert.Empty(t, cfg.Password, "device never echoes the password")
}

func TestSetNetworkConfig(t *testing.T) {
	client, pdu := newTestClient(t)

	err := client.SetNetworkConfig(context.Background(), &NetworkConfig{
		IP:      "10.0.0.50",
		Mask:    "255.255.255.0",
		Gateway: "10.0.0.1",
		DNS:     "10.0.0.1",
	})
	require.NoError(t, err)
	ip, gateway := pdu.netInfo()
	assert.Equal(t, "10.0.0.50", ip)
	assert.Equal(t, "10.0.0.1", gateway)
	assert.EqualValues(t, 1, pdu.requests.Load(), "no credentials change, no user page post")
}

func TestSetNetworkConfigWithCredentials(t *testing.T) {
	client, pdu := newTestClient(t)

	err := client.SetNetworkConfig(context.Background(), &NetworkConfig{
		IP:       "10.0.0.50",
		Mask:     "255.255.255.0",
		Gateway:  "10.0.0.1",
		Username: "operator",
		Password: "hunter2",
	})
	require.NoError(t, err)
	user, pass := pdu.creds()
	assert.Equal(t, "operator", user)
	assert.Equal(t, "hunter2", pass)
	assert.EqualValues(t, 2, pdu.requests.Load())
}

func TestSetNetworkConfigInvalidIP(t *testing.T) {
	client, pdu := newTestClient(t)

	err := client.SetNetworkConfig(context.Background(), &NetworkConfig{
		IP:      "not-an-ip",
		Mask:    "255.255.255.0",
		Gateway: "10.0.0.1",
	})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "ip", valErr.Field)
	assert.EqualValues(t, 0, pdu.requests.Load())
}

func TestSetNetworkConfigUsernameRequiresPassword(t *testing.T) {
	client, pdu := newTestClient(t)

	err := client.SetNetworkConfig(context.Background(), &NetworkConfig{
		IP:       "10.0.0.50",
		Mask:     "255.255.255.0",
		Gateway:  "10.0.0.1",
		Username: "operator",
	})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.EqualValues(t, 0, pdu.requests.Load())
}

func TestServerErrorIsCommunicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := New(srv.URL)

	_, err := client.GetStatus(context.Background())
	var commErr *CommunicationError
	require.ErrorAs(t, err, &commErr)
	assert.Equal(t, http.StatusInternalServerError, commErr.StatusCode)
}

func TestSnapshot(t *testing.T) {
	client, pdu := newTestClient(t)
	pdu.setState(6, OutletOff)

	snap, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutletOff, snap.Status.OutletStates[6])
	assert.Len(t, snap.OutletConfigs, 8)
	assert.Equal(t, 10.0, snap.Thresholds.OverloadAmps)
	assert.EqualValues(t, 3, pdu.requests.Load())
}

func TestSnapshotPropagatesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	client := New(srv.URL)

	_, err := client.Snapshot(context.Background())
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestCustomOutletCount(t *testing.T) {
	client, _ := newTestClient(t, WithOutletCount(4))
	assert.Equal(t, 4, client.OutletCount())

	err := client.SetOutlet(context.Background(), 5, CommandOn)
	var invErr *InvalidOutletError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 4, invErr.Count)
}

func TestHost(t *testing.T) {
	assert.Equal(t, "192.168.0.100", New("http://192.168.0.100").Host())
	assert.Equal(t, "192.168.0.100", New("http://192.168.0.100:8080/").Host())
}

func TestReadBodyDecodesLegacyCharset(t *testing.T) {
	// 0xB0 is the degree sign in ISO-8859-1 but invalid UTF-8.
	body, err := readBody(bytes.NewReader([]byte{'2', '6', 0xb0, 'C'}), "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "26°C", string(body))
}

func TestReadBodyPassesUTF8Through(t *testing.T) {
	body, err := readBody(bytes.NewReader([]byte("26°C")), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "26°C", string(body))
}
