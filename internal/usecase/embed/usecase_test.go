package embed

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
)

func TestTargets(t *testing.T) {
	uc := NewUsecase(config.EmbedConfig{
		DashboardURL:  "https://app.powerbi.com/view?r=abc",
		IntakeFormURL: "https://forms.example.com/intake",
	}, zap.NewNop())

	targets := uc.Targets()
	require.Len(t, targets, 2)

	assert.Equal(t, "Work Overview Dashboard", targets[0].Label)
	assert.Contains(t, targets[0].URL, "chromeless=true")
	assert.Contains(t, targets[0].URL, "pageView=FitToWidth")

	assert.Equal(t, "Intake Form", targets[1].Label)
	assert.Equal(t, "https://forms.example.com/intake", targets[1].URL)
}

func TestTargetsEmptyConfig(t *testing.T) {
	uc := NewUsecase(config.EmbedConfig{}, zap.NewNop())
	assert.Empty(t, uc.Targets())
}

func TestSupportLink(t *testing.T) {
	uc := NewUsecase(config.EmbedConfig{SupportContact: "support@example.com"}, zap.NewNop())

	link, err := uc.SupportLink(&SupportRequest{
		Tool:        "VAT Checker",
		Category:    "Bug",
		Severity:    "High",
		Description: "Batch stops after 50 rows",
		Username:    "alice",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://outlook.office.com/mail/deeplink/compose?"))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "support@example.com", q.Get("to"))
	assert.Equal(t, "[Feedback] VAT Checker – Bug (High)", q.Get("subject"))
	assert.Contains(t, q.Get("body"), "Batch stops after 50 rows")
	assert.Contains(t, q.Get("body"), "Submitted by: alice")
	assert.Contains(t, q.Get("body"), "Steps to reproduce:\n(not provided)")
}

func TestSupportLinkValidation(t *testing.T) {
	uc := NewUsecase(config.EmbedConfig{}, zap.NewNop())
	_, err := uc.SupportLink(&SupportRequest{Tool: "Chat", Description: "broken"})
	assert.ErrorIs(t, err, entity.ErrMissingField)

	uc = NewUsecase(config.EmbedConfig{SupportContact: "support@example.com"}, zap.NewNop())
	_, err = uc.SupportLink(&SupportRequest{Tool: "", Description: "broken"})
	assert.ErrorIs(t, err, entity.ErrMissingField)
	_, err = uc.SupportLink(&SupportRequest{Tool: "Chat", Description: "  "})
	assert.ErrorIs(t, err, entity.ErrMissingField)
}
