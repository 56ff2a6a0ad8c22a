package extract

import (
	"fmt"
	"regexp"
	"strings"
)

const pptxSlidePrefix = "ppt/slides/slide"

var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

func validatePPTX(content []byte) error {
	zr, err := openZip(content)
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/") {
			return nil
		}
	}
	return fmt.Errorf("no ppt/ parts")
}

func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", fmt.Errorf("extract PPTX: %w", err)
	}
	var slides []string
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		xml, err := readZipEntry(zr, f.Name)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: %w", err)
		}
		if text := joinMatches(string(xml), atTag); text != "" {
			slides = append(slides, text)
		}
	}
	return strings.Join(slides, " "), nil
}
