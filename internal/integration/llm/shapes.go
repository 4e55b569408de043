package llm

import (
	"strings"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

// Family classifies the hosted endpoint by its URL. The two observed
// families take different auth headers and different body wrappers.
type Family string

const (
	// FamilyManagedCompute endpoints expect Bearer auth and an input_data
	// wrapper.
	FamilyManagedCompute Family = "managed-compute"
	// FamilyHostedInference endpoints expect an api-key header and a
	// flatter inputs wrapper.
	FamilyHostedInference Family = "hosted-inference"
)

// DetectFamily inspects the endpoint URL.
func DetectFamily(endpoint string) Family {
	if strings.Contains(strings.ToLower(endpoint), ".inference.ml.azure.com") {
		return FamilyManagedCompute
	}
	return FamilyHostedInference
}

// ShapeInputs carries everything a candidate body may need.
type ShapeInputs struct {
	Prompt   string
	History  []entity.HistoryPair
	Messages []entity.Message
}

// CandidateShape is a named, pure transformation of the inputs into a
// JSON-serializable request body. The label is for diagnostics only.
type CandidateShape struct {
	Label string
	Build func(in ShapeInputs) any
}

func inputsBlock(in ShapeInputs) map[string]any {
	history := in.History
	if history == nil {
		history = []entity.HistoryPair{}
	}
	return map[string]any{
		"chat_input":   in.Prompt,
		"chat_history": history,
	}
}

// CandidateShapes returns the ordered candidate bodies for a family. The
// order is fixed; the acquirer tries each exactly once.
func CandidateShapes(f Family) []CandidateShape {
	if f == FamilyManagedCompute {
		return []CandidateShape{
			{"managed.input_data.inputs", func(in ShapeInputs) any {
				return map[string]any{"input_data": map[string]any{"inputs": inputsBlock(in)}}
			}},
			{"managed.input_data.flat", func(in ShapeInputs) any {
				return map[string]any{"input_data": inputsBlock(in)}
			}},
			{"managed.flat", func(in ShapeInputs) any {
				return inputsBlock(in)
			}},
			{"managed.input_data.messages", func(in ShapeInputs) any {
				return map[string]any{"input_data": map[string]any{"inputs": map[string]any{"messages": in.Messages}}}
			}},
		}
	}
	return []CandidateShape{
		{"hosted.inputs", func(in ShapeInputs) any {
			return map[string]any{"inputs": inputsBlock(in)}
		}},
		{"hosted.inputs.messages", func(in ShapeInputs) any {
			return map[string]any{"inputs": map[string]any{"messages": in.Messages}}
		}},
		{"hosted.flat", func(in ShapeInputs) any {
			return inputsBlock(in)
		}},
	}
}

// extractor pulls a text answer out of a decoded response body, returning
// false when its field is absent or empty.
type extractor func(data map[string]any) (string, bool)

// extractors is the fixed precedence list over response fields.
var extractors = []extractor{
	func(d map[string]any) (string, bool) { return nestedString(d, "outputs", "chat_output") },
	func(d map[string]any) (string, bool) { return topString(d, "chat_output") },
	func(d map[string]any) (string, bool) { return nestedString(d, "outputs", "output") },
	func(d map[string]any) (string, bool) { return topString(d, "output") },
	extractChoices,
	func(d map[string]any) (string, bool) { return topString(d, "prediction") },
	func(d map[string]any) (string, bool) { return topString(d, "result") },
	func(d map[string]any) (string, bool) { return topString(d, "value") },
}

// extractText runs the precedence list and returns the first populated
// field.
func extractText(data map[string]any) (string, bool) {
	for _, ex := range extractors {
		if s, ok := ex(data); ok {
			return s, true
		}
	}
	return "", false
}

func topString(data map[string]any, key string) (string, bool) {
	s, ok := data[key].(string)
	return s, ok && s != ""
}

func nestedString(data map[string]any, outer, key string) (string, bool) {
	inner, ok := data[outer].(map[string]any)
	if !ok {
		return "", false
	}
	return topString(inner, key)
}

func extractChoices(data map[string]any) (string, bool) {
	choices, ok := data["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := first["message"].(map[string]any)
	if !ok {
		return "", false
	}
	return topString(message, "content")
}
