package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Auth errors
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrSessionNotFound   = errors.New("session not found or expired")

	// LLM errors
	ErrMissingLLMConfig = errors.New("missing LLM configuration: endpoint and API key are required")
	ErrEmptyPrompt      = errors.New("prompt must not be empty")

	// Pipeline errors
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")
	ErrEmptyCorpus     = errors.New("no documents to index")
	ErrNoPipelineRun   = errors.New("no pipeline results available")
	ErrRisksNotJSON    = errors.New("risk extraction response is not a JSON array")

	// VAT errors
	ErrNoVATNumbers   = errors.New("no VAT numbers provided")
	ErrVATNumberShort = errors.New("VAT number must include a country prefix")
	ErrNoVATReport    = errors.New("no VAT results available")

	// Template errors
	ErrMissingTemplateInput = errors.New("required template input is missing")

	// File errors
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyFiles      = errors.New("too many files")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrTotalSizeTooLarge = errors.New("total file size too large")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ExhaustionError is returned when every candidate request shape was tried
// against the LLM endpoint and none produced an acceptable answer. It keeps
// the last HTTP status and a truncated body for diagnostics.
type ExhaustionError struct {
	Attempts   int
	LastStatus int
	LastBody   string
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf(
		"endpoint accepted the call but returned no usable answer after %d payload shapes "+
			"(the endpoint likely expects a different request schema); last status: %d; last body: %s",
		e.Attempts, e.LastStatus, e.LastBody,
	)
}
