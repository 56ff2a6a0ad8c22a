package extract

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
)

// validateImageAs decodes the image header and requires the decoder to report want.
func validateImageAs(want string) func([]byte) error {
	return func(content []byte) error {
		_, got, err := image.DecodeConfig(bytes.NewReader(content))
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("content is %s", got)
		}
		return nil
	}
}

func validateWebP(content []byte) error {
	if m := mimetype.Detect(content); !m.Is("image/webp") {
		return fmt.Errorf("content is %s", m.String())
	}
	return nil
}

// Detect sniffs content and returns the image extension (without dot) its magic bytes match.
func Detect(content []byte) (string, bool) {
	m := mimetype.Detect(content)
	switch {
	case m.Is("image/jpeg"):
		return "jpg", true
	case m.Is("image/png"):
		return "png", true
	case m.Is("image/gif"):
		return "gif", true
	case m.Is("image/webp"):
		return "webp", true
	}
	return "", false
}
