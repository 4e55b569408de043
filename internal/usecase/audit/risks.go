package audit

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

// codeFence matches a reply wrapped in a markdown code fence, with or
// without a json language tag.
var codeFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// riskSchemaInstruction is appended to the extraction system message so
// the model answers with machine-readable rows.
const riskSchemaInstruction = `When you answer, return only a JSON array of objects, each matching exactly this schema:
[
  {
    "risk_type":           "string",
    "Fraud Risk Factor?":  "Yes"|"No",
    "Internal Controls":   "string",
    "Likelihood":          "High"|"Low",
    "Likelihood Explanation":"string",
    "Material Quantitative Impact?":"High"|"Low",
    "Impact Explanation":  "string",
    "Conclusion":          "string",
    "SR?":                 "SR"|"No SR"
  }
]`

// ParseRisks decodes the extraction reply into validated records. Items
// without a risk type are skipped and reported in the second return value;
// a reply that is not a JSON array at all is an error.
func ParseRisks(raw string) ([]entity.RiskRecord, []string, error) {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", entity.ErrRisksNotJSON, err)
	}

	var risks []entity.RiskRecord
	var skipped []string
	for i, item := range items {
		riskType := stringField(item, "risk_type", "")
		if riskType == "" {
			skipped = append(skipped, fmt.Sprintf("item %d has no risk_type", i))
			continue
		}

		record := entity.RiskRecord{
			RiskType:              riskType,
			FraudRiskFactor:       coerceYesNo(stringField(item, "Fraud Risk Factor?", "")),
			InternalControls:      stringField(item, "Internal Controls", entity.RiskFieldDefault),
			Likelihood:            coerceHighLow(stringField(item, "Likelihood", "")),
			LikelihoodExplanation: stringField(item, "Likelihood Explanation", entity.RiskFieldDefault),
			Impact:                coerceHighLow(stringField(item, "Material Quantitative Impact?", "")),
			ImpactExplanation:     stringField(item, "Impact Explanation", entity.RiskFieldDefault),
			Conclusion:            stringField(item, "Conclusion", entity.RiskFieldDefault),
		}
		// Significance is derived, never taken from the model.
		record.Significant = entity.RiskInsignificant
		if record.Likelihood == entity.RiskHigh && record.Impact == entity.RiskHigh {
			record.Significant = entity.RiskSignificant
		}

		risks = append(risks, record)
	}

	return risks, skipped, nil
}

// coerceYesNo maps any reply carrying "yes" to Yes; everything else,
// including empty, becomes No.
func coerceYesNo(value string) string {
	if strings.Contains(strings.ToLower(strings.TrimSpace(value)), "yes") {
		return entity.RiskYes
	}
	return entity.RiskNo
}

// coerceHighLow maps any reply carrying "high" to High; everything else,
// including empty, becomes Low.
func coerceHighLow(value string) string {
	if strings.Contains(strings.ToLower(strings.TrimSpace(value)), "high") {
		return entity.RiskHigh
	}
	return entity.RiskLow
}

func stringField(item map[string]any, key, fallback string) string {
	if v, ok := item[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
