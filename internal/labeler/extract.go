package labeler

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/hyperjump/sense/internal/extract"
)

// MaxExtractRunes caps labels derived from document text.
const MaxExtractRunes = 512

// Extract labels documents with the start of their text and images with their file name.
type Extract struct {
	ex *extract.Extractor
}

// NewExtract returns an Extract labeler. A nil extractor uses the default one.
func NewExtract(ex *extract.Extractor) *Extract {
	if ex == nil {
		ex = extract.NewExtractor()
	}
	return &Extract{ex: ex}
}

// Label returns the collapsed leading text of the document, or the file name stem.
func (e *Extract) Label(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return finish(req, "", err)
	}
	if e.ex.IsImage(req.Ext) {
		return finish(req, stemLabel(req.Path), nil)
	}
	text, err := e.ex.Extract(req.AbsPath)
	if err != nil {
		return finish(req, "", err)
	}
	return finish(req, collapse(text, MaxExtractRunes), nil)
}

// stemLabel turns "trips/beach_sunset-2.jpg" into "beach sunset 2".
func stemLabel(key string) string {
	stem := strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
	return strings.Join(strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	}), " ")
}

// collapse joins whitespace runs into single spaces and keeps at most max runes.
func collapse(s string, max int) string {
	words := strings.Fields(s)
	var b strings.Builder
	n := 0
	for _, w := range words {
		if n > 0 {
			if n+1 >= max {
				break
			}
			b.WriteByte(' ')
			n++
		}
		for _, r := range w {
			if n >= max {
				return b.String()
			}
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}
