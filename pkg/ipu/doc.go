// Package ipu is a client for the Intellinet IP smart PDU (163682) web
// management interface.
//
// The device exposes no API beyond the HTML/XML pages its embedded web
// server renders, so this client speaks exactly that: it authenticates
// with HTTP Basic credentials, issues the same GET/POST requests the web
// UI would, and scrapes the returned markup into typed records.
//
// # Quick Start
//
// Create a client and read the device status:
//
//	dev := ipu.New("http://192.168.0.100")
//	if err := dev.Login(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	status, err := dev.GetStatus(ctx)
//
// Switch outlet 3 off and back on after the firmware's configured delay:
//
//	err := dev.SetOutlet(ctx, 3, ipu.CommandCycle)
//
// # Outlet Indices
//
// Outlets are numbered 1..OutletCount, matching the labels on the front
// panel. Indices are validated before any request is sent; an out-of-range
// index fails with *InvalidOutletError without touching the network.
//
// # Errors
//
// Every failure is a typed error: *AuthenticationError for rejected
// credentials, *InvalidOutletError and *ValidationError for bad input
// caught before any request, *CommunicationError for network and HTTP
// status failures, and *ParseError when a page was received but its
// structure is not the one this client knows. A ParseError usually means a
// firmware revision with different markup, never silently-partial data.
//
// # Concurrency and State
//
// The client holds no device state: every getter re-fetches, every setter
// issues a fresh request. The underlying *http.Client may be shared and is
// never closed by this package. No operation retries internally; retrying
// a power-control action is a caller decision.
package ipu
