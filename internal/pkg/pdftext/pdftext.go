// Package pdftext extracts the main body text of PDF documents. A fixed
// margin is cropped from every page edge so that running headers, footers
// and page numbers never reach the retrieval index.
package pdftext

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Letter-size fallback when a page carries no resolvable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// ExtractMainBody reads every page, drops text positioned inside the
// margin band, and returns the concatenated body text. The result still
// needs whitespace collapsing by the caller.
func ExtractMainBody(ra io.ReaderAt, size int64, margin float64) (text string, err error) {
	// The underlying parser panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pieces []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pieces = append(pieces, pageBody(page, margin))
	}
	return strings.Join(pieces, " "), nil
}

// ExtractPages reads every page without cropping and returns one text per
// page, in order. Used where page boundaries matter more than header
// removal.
func ExtractPages(ra io.ReaderAt, size int64) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageBody(page, 0))
	}
	return pages, nil
}

// pageBody collects the page's positioned text fragments that fall inside
// the cropped box, in content-stream order, inserting spaces at fragment
// gaps and line changes.
func pageBody(page pdf.Page, margin float64) string {
	x0, y0, x1, y1 := mediaBox(page)
	minX, minY := x0+margin, y0+margin
	maxX, maxY := x1-margin, y1-margin

	var sb strings.Builder
	var prev *pdf.Text
	for _, t := range page.Content().Text {
		if t.S == "" {
			continue
		}
		if t.X < minX || t.X > maxX || t.Y < minY || t.Y > maxY {
			continue
		}
		if prev != nil && (t.Y != prev.Y || t.X-(prev.X+prev.W) > 1) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		cur := t
		prev = &cur
	}
	return sb.String()
}

// mediaBox resolves the page's MediaBox, walking up the page tree since
// the attribute is inheritable.
func mediaBox(page pdf.Page) (x0, y0, x1, y1 float64) {
	node := page.V
	for !node.IsNull() {
		box := node.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			return box.Index(0).Float64(), box.Index(1).Float64(),
				box.Index(2).Float64(), box.Index(3).Float64()
		}
		node = node.Key("Parent")
	}
	return 0, 0, defaultPageWidth, defaultPageHeight
}
