package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const stockAnswer = "An Azure Machine Learning compute instance is a managed cloud-based workstation for data scientists."

func TestDetectorAnyStrategy(t *testing.T) {
	d := NewDetector(StrategyAny, false)

	assert.True(t, d.LooksLikeDefault(stockAnswer))
	assert.True(t, d.LooksLikeDefault("Sure! You can run a notebook on a compute instance whenever you like."))
	assert.False(t, d.LooksLikeDefault("Revenue grew 4% year over year."))
	assert.False(t, d.LooksLikeDefault(""))
}

func TestDetectorComboStrategy(t *testing.T) {
	d := NewDetector(StrategyCombo, false)

	// one full signature alone is not enough
	assert.False(t, d.LooksLikeDefault("you can run a notebook on a compute instance"))

	// two distinct signatures flag it
	assert.True(t, d.LooksLikeDefault(
		"You can run a notebook on a compute instance. "+
			"A compute instance is a fully managed cloud-based workstation."))

	// both topic markers together flag it even without a full phrase
	assert.True(t, d.LooksLikeDefault(
		"Azure Machine Learning lets you provision a compute instance in seconds."))

	// a single topic marker is an ordinary answer
	assert.False(t, d.LooksLikeDefault("The client migrated to Azure Machine Learning last year."))
}

func TestDetectorDisabled(t *testing.T) {
	d := NewDetector(StrategyAny, true)
	assert.False(t, d.LooksLikeDefault(stockAnswer))
}

func TestDetectorUnknownStrategyFallsBackToAny(t *testing.T) {
	d := NewDetector(Strategy("whatever"), false)
	assert.True(t, d.LooksLikeDefault(stockAnswer))
}
