package entity

// Risk field values used by the coercion helpers.
const (
	RiskYes           = "Yes"
	RiskNo            = "No"
	RiskHigh          = "High"
	RiskLow           = "Low"
	RiskSignificant   = "SR"
	RiskInsignificant = "No SR"

	RiskFieldDefault = "Not provided"
)

// RiskRecord is one validated inherent-risk item extracted from the corpus.
// Likelihood and Impact are always "High" or "Low" after coercion;
// FraudRiskFactor is "Yes" or "No"; Significant is derived from Likelihood
// and Impact and overrides whatever the model returned.
type RiskRecord struct {
	RiskType              string `json:"risk_type"`
	FraudRiskFactor       string `json:"fraud_risk_factor"`
	InternalControls      string `json:"internal_controls"`
	Likelihood            string `json:"likelihood"`
	LikelihoodExplanation string `json:"likelihood_explanation"`
	Impact                string `json:"material_quantitative_impact"`
	ImpactExplanation     string `json:"impact_explanation"`
	Conclusion            string `json:"conclusion"`
	Significant           string `json:"sr"`
}
