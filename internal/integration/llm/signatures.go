package llm

import "strings"

// Strategy selects how aggressively a reply is classified as a template
// default rather than a real answer.
type Strategy string

const (
	// StrategyAny flags a reply when any known signature phrase occurs.
	StrategyAny Strategy = "any"
	// StrategyCombo flags a reply only when at least two distinct
	// signature phrases occur, or when both topic markers occur together.
	StrategyCombo Strategy = "combo"
)

// defaultSignatures are verbatim fragments of the stock sample answers an
// unconfigured deployment returns regardless of the question asked. Kept
// as one versioned list so new deployments can be covered by appending.
var defaultSignatures = []string{
	"a compute instance is a fully managed cloud-based workstation",
	"you can run a notebook on a compute instance",
	"an azure machine learning compute instance is a managed cloud-based workstation",
}

// topicMarkers back the combo strategy: a reply mentioning both is almost
// certainly the tutorial boilerplate even when no full phrase matches.
var topicMarkers = []string{"compute instance", "azure machine learning"}

// Detector classifies replies as default boilerplate. A disabled detector
// never flags anything.
type Detector struct {
	signatures []string
	strategy   Strategy
	disabled   bool
}

// NewDetector builds a detector over the built-in signature corpus.
// Unknown strategies fall back to StrategyAny.
func NewDetector(strategy Strategy, disabled bool) *Detector {
	if strategy != StrategyCombo {
		strategy = StrategyAny
	}
	return &Detector{
		signatures: defaultSignatures,
		strategy:   strategy,
		disabled:   disabled,
	}
}

// LooksLikeDefault reports whether text matches the stock sample answers.
// Matching is case-insensitive over the whole reply.
func (d *Detector) LooksLikeDefault(text string) bool {
	if d.disabled || text == "" {
		return false
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, sig := range d.signatures {
		if strings.Contains(lower, sig) {
			hits++
		}
	}
	if d.strategy == StrategyAny {
		return hits > 0
	}
	if hits >= 2 {
		return true
	}
	for _, marker := range topicMarkers {
		if !strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
