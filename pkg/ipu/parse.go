package ipu

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/pkg/contenttype"
)

// The firmware's page structure is stable but undocumented. Each response
// type gets exactly one parser here; when a firmware revision changes a
// page, only its parser needs to follow. A missing element is always a
// *ParseError, never a partial record.

// statusDoc wraps a parsed status page. Most firmware serves it as XML,
// some revisions wrap the same elements in an HTML shell, so the parser is
// picked by sniffing the body the way the device's own UI scripts do.
type statusDoc struct {
	xml  *xmlquery.Node
	html *html.Node
}

func parseStatusDoc(body []byte) (*statusDoc, error) {
	if contenttype.Detect("", body) == contenttype.HTML {
		doc, err := htmlquery.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, &ParseError{Page: pageStatus, Reason: "unparseable HTML", Cause: err}
		}
		return &statusDoc{html: doc}, nil
	}
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Page: pageStatus, Reason: "unparseable XML", Cause: err}
	}
	return &statusDoc{xml: doc}, nil
}

// has reports whether the named status element is present.
func (d *statusDoc) has(name string) bool {
	if d.xml != nil {
		return xmlquery.FindOne(d.xml, "//"+name) != nil
	}
	return htmlquery.FindOne(d.html, "//"+strings.ToLower(name)) != nil
}

// text returns the text content of the named status element.
func (d *statusDoc) text(name string) (string, error) {
	if d.xml != nil {
		n := xmlquery.FindOne(d.xml, "//"+name)
		if n == nil {
			return "", &ParseError{Page: pageStatus, Reason: fmt.Sprintf("missing element %q", name)}
		}
		return strings.TrimSpace(n.InnerText()), nil
	}
	// The HTML parser lowercases tag names, so match the lowered form.
	n := htmlquery.FindOne(d.html, "//"+strings.ToLower(name))
	if n == nil {
		return "", &ParseError{Page: pageStatus, Reason: fmt.Sprintf("missing element %q", name)}
	}
	return strings.TrimSpace(htmlquery.InnerText(n)), nil
}

func (d *statusDoc) intField(name string) (int, error) {
	s, err := d.text(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{Page: pageStatus, Reason: fmt.Sprintf("element %q is not an integer", name), Cause: err}
	}
	return v, nil
}

func (d *statusDoc) floatField(name string) (float64, error) {
	s, err := d.text(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Page: pageStatus, Reason: fmt.Sprintf("element %q is not a number", name), Cause: err}
	}
	return v, nil
}

func parseStatus(body []byte, outletCount int) (*Status, error) {
	doc, err := parseStatusDoc(body)
	if err != nil {
		return nil, err
	}

	status := &Status{}
	if status.CurrentAmps, err = doc.floatField("cur0"); err != nil {
		return nil, err
	}
	// vol0 is a later-firmware addition; the base page has no voltage
	// element, so a status read must not demand one.
	if doc.has("vol0") {
		if status.VoltageVolts, err = doc.intField("vol0"); err != nil {
			return nil, err
		}
	}
	if status.TempCelsius, err = doc.intField("tempCBan"); err != nil {
		return nil, err
	}
	if status.HumidityPercent, err = doc.intField("humBan"); err != nil {
		return nil, err
	}
	if status.Alarm, err = doc.text("stat0"); err != nil {
		return nil, err
	}

	status.OutletStates = make([]OutletState, outletCount)
	for i := range outletCount {
		s, err := doc.text(fmt.Sprintf("outletStat%d", i))
		if err != nil {
			return nil, err
		}
		switch OutletState(s) {
		case OutletOn, OutletOff:
			status.OutletStates[i] = OutletState(s)
		default:
			return nil, &ParseError{
				Page:   pageStatus,
				Reason: fmt.Sprintf("outlet %d reports unknown state %q", i+1, s),
			}
		}
	}
	return status, nil
}

// parseTelemetry extracts a reading from the status page. Voltage is the
// shared bank feed; outlet > 0 swaps the bank current for that outlet's
// own measurement element.
func parseTelemetry(body []byte, outlet int) (*Telemetry, error) {
	doc, err := parseStatusDoc(body)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{Outlet: outlet}
	if t.VoltageVolts, err = doc.intField("vol0"); err != nil {
		return nil, err
	}
	currentElem := "cur0"
	if outlet > 0 {
		currentElem = fmt.Sprintf("outletCur%d", outlet-1)
	}
	if t.CurrentAmps, err = doc.floatField(currentElem); err != nil {
		return nil, err
	}
	return t, nil
}

// parseOutletConfigs scrapes the outlet settings table: one row per
// outlet, with name, turn-on delay, turn-off delay as the row's input
// values, in that order.
func parseOutletConfigs(body []byte, outletCount int) ([]OutletConfig, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Page: pageConfigPDU, Reason: "unparseable HTML", Cause: err}
	}

	var configs []OutletConfig
	var rowErr error
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if rowErr != nil {
			return
		}
		var values []string
		row.Find("td input").Each(func(_ int, input *goquery.Selection) {
			if v, ok := input.Attr("value"); ok {
				values = append(values, v)
			}
		})
		if len(values) == 0 {
			return // header or layout row
		}
		if len(values) < 3 {
			rowErr = &ParseError{
				Page:   pageConfigPDU,
				Reason: fmt.Sprintf("outlet row %d has %d input values, want 3", len(configs)+1, len(values)),
			}
			return
		}
		onDelay, err := strconv.Atoi(strings.TrimSpace(values[1]))
		if err != nil {
			rowErr = &ParseError{Page: pageConfigPDU, Reason: "turn-on delay is not an integer", Cause: err}
			return
		}
		offDelay, err := strconv.Atoi(strings.TrimSpace(values[2]))
		if err != nil {
			rowErr = &ParseError{Page: pageConfigPDU, Reason: "turn-off delay is not an integer", Cause: err}
			return
		}
		configs = append(configs, OutletConfig{
			Name:         values[0],
			TurnOnDelay:  onDelay,
			TurnOffDelay: offDelay,
		})
	})
	if rowErr != nil {
		return nil, rowErr
	}
	if len(configs) != outletCount {
		return nil, &ParseError{
			Page:   pageConfigPDU,
			Reason: fmt.Sprintf("found %d outlet rows, want %d", len(configs), outletCount),
		}
	}
	return configs, nil
}

// inputValue finds a form input by id or name and returns its value
// attribute.
func inputValue(page string, doc *html.Node, name string) (string, error) {
	n := htmlquery.FindOne(doc, fmt.Sprintf("//input[@id='%s' or @name='%s']", name, name))
	if n == nil {
		return "", &ParseError{Page: page, Reason: fmt.Sprintf("missing input %q", name)}
	}
	return htmlquery.SelectAttr(n, "value"), nil
}

func parseThresholds(body []byte) (*Thresholds, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Page: pageThresholds, Reason: "unparseable HTML", Cause: err}
	}

	intField := func(name string) (int, error) {
		s, err := inputValue(pageThresholds, doc, name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, &ParseError{Page: pageThresholds, Reason: fmt.Sprintf("input %q is not an integer", name), Cause: err}
		}
		return v, nil
	}
	floatField := func(name string) (float64, error) {
		s, err := inputValue(pageThresholds, doc, name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, &ParseError{Page: pageThresholds, Reason: fmt.Sprintf("input %q is not a number", name), Cause: err}
		}
		return v, nil
	}

	t := &Thresholds{}
	if t.WarningAmps, err = floatField("wrncur"); err != nil {
		return nil, err
	}
	if t.OverloadAmps, err = floatField("ovrcur"); err != nil {
		return nil, err
	}
	if t.WarningVolts, err = intField("wrnvol"); err != nil {
		return nil, err
	}
	if t.OverloadVolts, err = intField("ovrvol"); err != nil {
		return nil, err
	}
	if t.WarningTempUnderC, err = intField("wrntp1"); err != nil {
		return nil, err
	}
	if t.WarningTempOverC, err = intField("wrntp2"); err != nil {
		return nil, err
	}
	if t.WarningHumidityPercent, err = intField("wrnhum"); err != nil {
		return nil, err
	}
	return t, nil
}

func parseNetworkPage(body []byte) (*NetworkConfig, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Page: pageNetwork, Reason: "unparseable HTML", Cause: err}
	}

	cfg := &NetworkConfig{}
	if cfg.IP, err = inputValue(pageNetwork, doc, "ip"); err != nil {
		return nil, err
	}
	if cfg.Mask, err = inputValue(pageNetwork, doc, "msk"); err != nil {
		return nil, err
	}
	if cfg.Gateway, err = inputValue(pageNetwork, doc, "gw"); err != nil {
		return nil, err
	}
	// DNS is absent on older firmware.
	if n := htmlquery.FindOne(doc, "//input[@id='dns' or @name='dns']"); n != nil {
		cfg.DNS = htmlquery.SelectAttr(n, "value")
	}
	return cfg, nil
}

func parseUserPage(body []byte) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return "", &ParseError{Page: pageUser, Reason: "unparseable HTML", Cause: err}
	}
	return inputValue(pageUser, doc, "unm")
}
