package extract

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/lu4p/cat"
)

const openDocumentContent = "content.xml"

var (
	odfTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

func validateOpenDocument(content []byte) error {
	zr, err := openZip(content)
	if err != nil {
		return err
	}
	if !hasZipEntry(zr, openDocumentContent) {
		return fmt.Errorf("%s not found", openDocumentContent)
	}
	return nil
}

func readOpenDocumentContent(content []byte) (string, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", err
	}
	xml, err := readZipEntry(zr, openDocumentContent)
	if err != nil {
		return "", err
	}
	if xml == nil {
		return "", fmt.Errorf("%s not found", openDocumentContent)
	}
	return string(xml), nil
}

func extractODP(content []byte) (string, error) {
	xml, err := readOpenDocumentContent(content)
	if err != nil {
		return "", fmt.Errorf("extract ODP: %w", err)
	}
	return joinMatches(xml, odfTextP, odfTextSpan, odfTextH), nil
}

func extractODS(content []byte) (string, error) {
	xml, err := readOpenDocumentContent(content)
	if err != nil {
		return "", fmt.Errorf("extract ODS: %w", err)
	}
	return joinMatches(xml, odfTextP, odfTextSpan), nil
}

func validateRTF(content []byte) error {
	if !bytes.HasPrefix(bytes.TrimLeft(content, " \t\r\n"), []byte(`{\rtf`)) {
		return fmt.Errorf(`missing {\rtf header`)
	}
	return nil
}

// extractCat handles ODT and RTF, which lu4p/cat recognizes by content.
func extractCat(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}
