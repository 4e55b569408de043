// Package dashboard prepares BI report embed URLs for iframe rendering.
package dashboard

import (
	"net/url"
)

// WithHiddenPanes forces the query parameters that hide the report's
// navigation and filter chrome and fit it to the iframe. An unparseable
// URL is returned unchanged.
func WithHiddenPanes(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	q := parsed.Query()
	q.Set("navContentPaneEnabled", "false")
	q.Set("filterPaneEnabled", "false")
	q.Set("chromeless", "true")
	q.Set("pageView", "FitToWidth")
	q.Set("fullscreen", "true")
	parsed.RawQuery = q.Encode()

	return parsed.String()
}
