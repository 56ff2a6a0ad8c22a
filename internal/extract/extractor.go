// Package extract checks that file content matches its claimed media type and pulls plain text
// out of the document formats that carry any.
package extract

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/fileid"
)

type format struct {
	validate func(content []byte) error
	extract  func(content []byte) (string, error)
}

// formats maps a lower-case extension without the dot to its decoder pair.
var formats = map[string]format{
	"jpg":  {validateImageAs("jpeg"), noText},
	"jpeg": {validateImageAs("jpeg"), noText},
	"png":  {validateImageAs("png"), noText},
	"gif":  {validateImageAs("gif"), noText},
	"webp": {validateWebP, noText},
	"pdf":  {validatePDF, extractPDF},
	"docx": {validateDOCX, extractDOCX},
	"pptx": {validatePPTX, extractPPTX},
	"xlsx": {validateExcel, extractExcel},
	"odt":  {validateOpenDocument, extractCat},
	"odp":  {validateOpenDocument, extractODP},
	"ods":  {validateOpenDocument, extractODS},
	"rtf":  {validateRTF, extractCat},
	"txt":  {validatePlain, extractPlain},
	"md":   {validatePlain, extractPlain},
}

// Extractor validates and extracts text from supported media.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether ext (with or without the leading dot) is a known media type.
func (e *Extractor) Supported(ext string) bool {
	_, ok := formats[normalizeExt(ext)]
	return ok
}

// Extensions returns every supported extension, without dots, sorted.
func (e *Extractor) Extensions() []string {
	out := make([]string, 0, len(formats))
	for ext := range formats {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsImage reports whether ext names an image type. Images carry no extractable text.
func (e *Extractor) IsImage(ext string) bool {
	switch normalizeExt(ext) {
	case "jpg", "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}

// Validate returns a Decode error when content does not decode as the type its extension claims.
func (e *Extractor) Validate(path string, content []byte) error {
	ext := fileid.Ext(path)
	f, ok := formats[ext]
	if !ok {
		return apperr.Errorf(apperr.Decode, "validate", path, "unsupported extension %q", ext)
	}
	if err := f.validate(content); err != nil {
		return apperr.New(apperr.Decode, "validate", path, fmt.Errorf("not a valid .%s file: %w", ext, err))
	}
	return nil
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.New(apperr.IO, "read", path, err)
	}
	return e.ExtractBytes(content, fileid.Ext(path))
}

// ExtractBytes extracts text from content according to ext. Images yield "".
// Unknown extensions are treated as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	f, ok := formats[normalizeExt(ext)]
	if !ok {
		return extractPlain(content)
	}
	return f.extract(content)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func noText([]byte) (string, error) { return "", nil }
