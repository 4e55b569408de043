package vies

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	pkghttp "github.com/rsmnext/assistant-backend/pkg/http"
)

// CheckResult is the parsed registry answer for one VAT number.
type CheckResult struct {
	Valid   bool
	Name    string
	Address string
}

// Connector speaks the checkVat SOAP operation of the EU VAT
// registry. The registry is flaky under load, so calls are retried.
type Connector struct {
	cfg    config.VIESConfig
	client *pkghttp.Connector
}

func NewConnector(cfg config.VIESConfig, logger *zap.Logger) *Connector {
	client := pkghttp.NewConnector(
		&pkghttp.ConnectorConfig{
			BaseURL: cfg.Endpoint,
			Logger:  logger,
		},
		pkghttp.WithRequestTimeout(cfg.Timeout),
		pkghttp.WithRequestLogging(),
	)

	return &Connector{
		cfg:    cfg,
		client: client,
	}
}

const envelopeTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<env:Envelope
 xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"
 xmlns:ins0="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
  <env:Body>
    <ins0:checkVat>
      <ins0:countryCode>%s</ins0:countryCode>
      <ins0:vatNumber>%s</ins0:vatNumber>
      <ins0:requesterCountryCode>%s</ins0:requesterCountryCode>
      <ins0:requesterVatNumber>%s</ins0:requesterVatNumber>
    </ins0:checkVat>
  </env:Body>
</env:Envelope>`

type soapEnvelope struct {
	XMLName xml.Name  `xml:"Envelope"`
	Body    *soapBody `xml:"Body"`
}

type soapBody struct {
	Response *checkVatResponse `xml:"checkVatResponse"`
	Fault    *soapFault        `xml:"Fault"`
}

type checkVatResponse struct {
	CountryCode string `xml:"countryCode"`
	VATNumber   string `xml:"vatNumber"`
	RequestDate string `xml:"requestDate"`
	Valid       bool   `xml:"valid"`
	Name        string `xml:"name"`
	Address     string `xml:"address"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	Reason string `xml:"faultstring"`
}

// FaultError is a SOAP-level failure from the registry.
type FaultError struct {
	Code   string
	Reason string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("VIES fault %s: %s", e.Code, e.Reason)
}

// Message maps the registry fault to the operator-facing wording shown in
// the result table.
func (e *FaultError) Message() string {
	if e.Code == "env:Server" || strings.Contains(e.Code, "Server") {
		return "Server Not Responding, try later"
	}
	if e.Reason != "" {
		return e.Reason
	}
	return e.Code
}

// CheckVAT validates one number against the registry. Transport failures
// and server-side statuses are retried; SOAP faults are not, since the
// registry returns them deterministically for a given input.
func (c *Connector) CheckVAT(ctx context.Context, country, number string) (*CheckResult, error) {
	payload := fmt.Sprintf(envelopeTemplate,
		xmlEscape(country),
		xmlEscape(number),
		xmlEscape(c.cfg.RequesterCountry),
		xmlEscape(c.cfg.RequesterVAT),
	)

	var body []byte
	err := retry.Do(
		func() error {
			status, respBody, err := c.client.DoBytes(
				ctx, http.MethodPost, "", "text/xml; charset=utf-8", []byte(payload),
				pkghttp.WithHeader("SOAPAction", ""),
			)
			if err != nil {
				return err
			}
			// The registry returns faults with status 500; keep the body so
			// the fault can be surfaced instead of the bare status.
			body = respBody
			if status >= http.StatusInternalServerError && !looksLikeFault(respBody) {
				return &pkghttp.HTTPError{StatusCode: status, Message: string(respBody)}
			}
			return nil
		},
		append(c.cfg.Retry.ToRetryOptions(), retry.Context(ctx))...,
	)
	if err != nil {
		return nil, err
	}

	return parseResponse(body)
}

func parseResponse(body []byte) (*CheckResult, error) {
	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse VIES response: %w", err)
	}
	if env.Body == nil {
		return nil, fmt.Errorf("VIES response has no body")
	}
	if env.Body.Fault != nil {
		return nil, &FaultError{
			Code:   env.Body.Fault.Code,
			Reason: env.Body.Fault.Reason,
		}
	}
	if env.Body.Response == nil {
		return nil, fmt.Errorf("VIES response has no checkVatResponse element")
	}

	resp := env.Body.Response
	return &CheckResult{
		Valid:   resp.Valid,
		Name:    cleanTraderField(resp.Name, "name"),
		Address: cleanTraderField(collapseWhitespace(resp.Address), "address"),
	}, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanTraderField drops the placeholder values some Member States return
// instead of real registration data.
func cleanTraderField(value, placeholder string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "---" || strings.EqualFold(trimmed, placeholder) {
		return ""
	}
	return trimmed
}

func looksLikeFault(body []byte) bool {
	return strings.Contains(string(body), "Fault")
}

func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
