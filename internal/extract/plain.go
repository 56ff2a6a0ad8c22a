package extract

import (
	"errors"
	"strings"
	"unicode/utf8"
)

func validatePlain(content []byte) error {
	if !utf8.Valid(content) {
		return errors.New("invalid UTF-8")
	}
	return nil
}

// extractPlain replaces invalid UTF-8 sequences with U+FFFD.
func extractPlain(content []byte) (string, error) {
	return strings.ToValidUTF8(string(content), "\ufffd"), nil
}
