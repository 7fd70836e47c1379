// Package contenttype decides which markup parser a device response needs.
//
// The PDU's embedded web server serves a mix of XML (status.xml) and HTML
// (the config_*.htm pages), and some firmware revisions label both as
// text/html or omit the header entirely. Classify inspects the declared
// Content-Type; Sniff falls back to the body when the declaration is
// missing or untrustworthy.
package contenttype

import (
	"bytes"
	"mime"
	"strings"
)

// Category is a broad classification of a device response body.
type Category string

const (
	HTML   Category = "html"
	XML    Category = "xml"
	Text   Category = "text"
	Binary Category = "binary"
)

// Classify returns the category for a Content-Type header value.
// Parameters (charset etc.) are stripped with mime.ParseMediaType before
// matching; malformed values fall back to a lowercase comparison.
// Returns Binary for an empty header.
func Classify(contentType string) Category {
	if contentType == "" {
		return Binary
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return HTML
	}
	if strings.Contains(mediaType, "xml") {
		return XML
	}
	if strings.HasPrefix(mediaType, "text/") {
		return Text
	}
	return Binary
}

// Charset returns the charset parameter of a Content-Type header value,
// lowercased, or "" when absent or unparseable.
func Charset(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

// Sniff classifies a response by its body. The firmware dispatch rule is
// deliberately loose: anything mentioning an html tag is HTML, anything
// else that looks like a document is XML.
func Sniff(body []byte) Category {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Binary
	}

	lower := bytes.ToLower(trimmed)
	if bytes.Contains(lower, []byte("<html")) || bytes.HasPrefix(lower, []byte("<!doctype html")) {
		return HTML
	}
	if bytes.HasPrefix(lower, []byte("<?xml")) || bytes.HasPrefix(lower, []byte("<")) {
		return XML
	}
	return Text
}

// Detect combines Sniff and Classify. The body decides when it looks like
// markup (firmware headers lie), the declared Content-Type breaks ties.
func Detect(contentType string, body []byte) Category {
	switch c := Sniff(body); c {
	case HTML, XML:
		return c
	}
	return Classify(contentType)
}
