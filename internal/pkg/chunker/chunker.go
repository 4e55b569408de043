// Package chunker slides fixed-size, overlapping word windows over cleaned
// document text to produce retrieval chunks.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]+`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Clean collapses control characters and runs of whitespace to single
// spaces and trims the result.
func Clean(raw string) string {
	text := controlChars.ReplaceAllString(raw, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Params configures the word window. Overlap must be smaller than Size.
type Params struct {
	Size    int
	Overlap int
}

func (p Params) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("%w: chunk size %d", entity.ErrInvalidParameter, p.Size)
	}
	if p.Overlap < 0 || p.Overlap >= p.Size {
		return entity.ErrInvalidChunking
	}
	return nil
}

// Split produces zero or more chunks for one document. Consecutive chunks
// overlap by exactly p.Overlap words; only the final chunk may be shorter
// than p.Size. An empty document yields no chunks.
func Split(source, text string, p Params) ([]entity.Chunk, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	words := strings.Fields(Clean(text))
	if len(words) == 0 {
		return nil, nil
	}

	stride := p.Size - p.Overlap
	var chunks []entity.Chunk
	for i := 0; i < len(words); i += stride {
		end := i + p.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, entity.Chunk{
			Source:  source,
			Ordinal: len(chunks),
			Text:    strings.Join(words[i:end], " "),
		})
	}
	return chunks, nil
}

// SplitAll chunks a set of named documents, preserving map iteration
// independence by keeping per-document ordinals.
func SplitAll(docs map[string]string, order []string, p Params) ([]entity.Chunk, error) {
	var all []entity.Chunk
	for _, name := range order {
		chunks, err := Split(name, docs[name], p)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}
