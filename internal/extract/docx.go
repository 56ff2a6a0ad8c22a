package extract

import (
	"archive/zip"
	"fmt"
	"regexp"
	"strings"
)

const (
	docxDefaultDocument = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

	// Override elements list PartName and ContentType in either order.
	docxPartFirst = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	docxTypeFirst = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// docxDocumentPath resolves the main document part, falling back to word/document.xml.
func docxDocumentPath(zr *zip.Reader) string {
	types, err := readZipEntry(zr, contentTypesPath)
	if err != nil || types == nil {
		return docxDefaultDocument
	}
	for _, re := range []*regexp.Regexp{docxPartFirst, docxTypeFirst} {
		if m := re.FindSubmatch(types); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return docxDefaultDocument
}

func validateDOCX(content []byte) error {
	zr, err := openZip(content)
	if err != nil {
		return err
	}
	if doc := docxDocumentPath(zr); !hasZipEntry(zr, doc) {
		return fmt.Errorf("%s not found", doc)
	}
	return nil
}

// extractDOCX joins every <w:t> run. lu4p/cat only matches attribute-free <w:p>, which misses most real documents.
func extractDOCX(content []byte) (string, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	doc := docxDocumentPath(zr)
	xml, err := readZipEntry(zr, doc)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	if xml == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", doc)
	}
	return joinMatches(string(xml), wtTag), nil
}

// joinMatches concatenates the first submatch of every pattern, in pattern order, space separated.
func joinMatches(s string, patterns ...*regexp.Regexp) string {
	var b strings.Builder
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(m[1]))
		}
	}
	return strings.TrimSpace(b.String())
}
