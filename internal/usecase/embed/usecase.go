package embed

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/dashboard"
)

const outlookComposeBase = "https://outlook.office.com/mail/deeplink/compose"

// EmbedUsecase serves the iframe targets the UI shell renders around the
// assistant, and builds support links.
type EmbedUsecase struct {
	cfg    config.EmbedConfig
	logger *zap.Logger
}

func NewUsecase(cfg config.EmbedConfig, logger *zap.Logger) *EmbedUsecase {
	return &EmbedUsecase{
		cfg:    cfg,
		logger: logger,
	}
}

// Targets lists the configured embeds. The BI dashboard URL always gets
// the chromeless viewing parameters forced on, whatever the operator
// configured.
func (uc *EmbedUsecase) Targets() []entity.EmbedTarget {
	var targets []entity.EmbedTarget
	if uc.cfg.DashboardURL != "" {
		targets = append(targets, entity.EmbedTarget{
			Label: "Work Overview Dashboard",
			URL:   dashboard.WithHiddenPanes(uc.cfg.DashboardURL),
		})
	}
	if uc.cfg.IntakeFormURL != "" {
		targets = append(targets, entity.EmbedTarget{
			Label: "Intake Form",
			URL:   uc.cfg.IntakeFormURL,
		})
	}
	if uc.cfg.ValueChainURL != "" {
		targets = append(targets, entity.EmbedTarget{
			Label: "Value Chain Agent",
			URL:   uc.cfg.ValueChainURL,
		})
	}
	return targets
}

// SupportRequest is a feedback form submission.
type SupportRequest struct {
	Tool        string `json:"tool"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Steps       string `json:"steps"`
	Email       string `json:"email"`
	Username    string `json:"-"`
}

// SupportLink renders the feedback as a prefilled Outlook Web compose
// link to the configured support contact.
func (uc *EmbedUsecase) SupportLink(req *SupportRequest) (string, error) {
	if uc.cfg.SupportContact == "" {
		return "", fmt.Errorf("%w: support contact is not configured", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.Tool) == "" || strings.TrimSpace(req.Description) == "" {
		return "", fmt.Errorf("%w: tool and description", entity.ErrMissingField)
	}

	subject := fmt.Sprintf("[Feedback] %s – %s (%s)", req.Tool, req.Category, req.Severity)
	body := supportBody(req)

	q := url.Values{}
	q.Set("to", uc.cfg.SupportContact)
	q.Set("subject", subject)
	q.Set("body", body)
	return outlookComposeBase + "?" + q.Encode(), nil
}

func supportBody(req *SupportRequest) string {
	lines := []string{
		"Tool: " + req.Tool,
		"Category: " + req.Category,
		"Severity: " + req.Severity,
		"Submitted by: " + valueOr(req.Username, "anonymous"),
		"Timestamp (UTC): " + time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		"",
		"Description:",
		strings.TrimSpace(req.Description),
		"",
		"Steps to reproduce:",
		valueOr(strings.TrimSpace(req.Steps), "(not provided)"),
		"",
		"Contact email: " + valueOr(req.Email, "(not provided)"),
	}
	return strings.Join(lines, "\n")
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
