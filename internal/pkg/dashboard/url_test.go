package dashboard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHiddenPanes(t *testing.T) {
	out := WithHiddenPanes("https://app.powerbi.com/view?r=abc123")

	parsed, err := url.Parse(out)
	require.NoError(t, err)
	q := parsed.Query()

	assert.Equal(t, "abc123", q.Get("r"))
	assert.Equal(t, "false", q.Get("navContentPaneEnabled"))
	assert.Equal(t, "false", q.Get("filterPaneEnabled"))
	assert.Equal(t, "true", q.Get("chromeless"))
	assert.Equal(t, "FitToWidth", q.Get("pageView"))
	assert.Equal(t, "true", q.Get("fullscreen"))
}

func TestWithHiddenPanesOverridesConfiguredValues(t *testing.T) {
	out := WithHiddenPanes("https://app.powerbi.com/view?chromeless=false&pageView=actualSize")

	q, err := url.ParseQuery(out[len("https://app.powerbi.com/view?"):])
	require.NoError(t, err)
	assert.Equal(t, "true", q.Get("chromeless"))
	assert.Equal(t, "FitToWidth", q.Get("pageView"))
}

func TestWithHiddenPanesLeavesGarbageAlone(t *testing.T) {
	assert.Equal(t, "not a url", WithHiddenPanes("not a url"))
	assert.Equal(t, "", WithHiddenPanes(""))
}
