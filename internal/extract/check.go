package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/sense/internal/apperr"
)

// CheckStatus classifies an image file after sniffing its content.
type CheckStatus int

const (
	// CheckCorrect means the extension matches the content.
	CheckCorrect CheckStatus = iota
	// CheckMismatch means the content is a different image type than the extension claims.
	CheckMismatch
	// CheckUnknown means the content is not a recognized image.
	CheckUnknown
)

// CheckResult compares the extension a file claims with the type its content shows.
type CheckResult struct {
	Path     string
	Claimed  string
	Detected string
	Status   CheckStatus
}

func (r CheckResult) String() string {
	switch r.Status {
	case CheckMismatch:
		return fmt.Sprintf("%s: claimed .%s, detected .%s", r.Path, r.Claimed, r.Detected)
	case CheckUnknown:
		return fmt.Sprintf("%s: claimed .%s, content not recognized", r.Path, r.Claimed)
	default:
		return fmt.Sprintf("%s: ok", r.Path)
	}
}

// CheckImage sniffs the file at path and compares it with its extension.
func (e *Extractor) CheckImage(path string) (CheckResult, error) {
	claimed := normalizeExt(filepath.Ext(path))
	res := CheckResult{Path: path, Claimed: claimed}
	content, err := os.ReadFile(path)
	if err != nil {
		return res, apperr.New(apperr.IO, "check", path, err)
	}
	detected, ok := Detect(content)
	switch {
	case !ok:
		res.Status = CheckUnknown
	case detected == canonicalImageExt(claimed):
		res.Detected = detected
		res.Status = CheckCorrect
	default:
		res.Detected = detected
		res.Status = CheckMismatch
	}
	return res, nil
}

// FixExtension renames a mismatched file to carry its detected extension and returns the
// new path. An existing file at the target is never overwritten.
func FixExtension(r CheckResult) (string, error) {
	if r.Status != CheckMismatch {
		return r.Path, nil
	}
	target := strings.TrimSuffix(r.Path, filepath.Ext(r.Path)) + "." + r.Detected
	if _, err := os.Stat(target); err == nil {
		return "", apperr.Errorf(apperr.IO, "fix", r.Path, "%s already exists", target)
	}
	if err := os.Rename(r.Path, target); err != nil {
		return "", apperr.New(apperr.IO, "fix", r.Path, err)
	}
	return target, nil
}

func canonicalImageExt(ext string) string {
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}
