// Package labeler supplies the text description that gets embedded for each file.
package labeler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/config"
	"github.com/hyperjump/sense/internal/extract"
)

// ErrNoLabel means the labeler has nothing for the file.
var ErrNoLabel = errors.New("no label")

// Request identifies the file to label.
type Request struct {
	Path    string // store key
	AbsPath string
	Hash    string
	Ext     string
}

// Labeler returns a non-empty label for a file or a Label-kind error.
type Labeler interface {
	Label(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Labeler.
type Func func(ctx context.Context, req Request) (string, error)

// Label calls f and applies the same checks as every other labeler.
func (f Func) Label(ctx context.Context, req Request) (string, error) {
	label, err := f(ctx, req)
	return finish(req, label, err)
}

// finish trims the label and maps failures and blank labels to Label errors.
func finish(req Request, label string, err error) (string, error) {
	if err != nil {
		if apperr.Is(err, apperr.Label) {
			return "", err
		}
		return "", apperr.New(apperr.Label, "label", req.Path, err)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return "", apperr.New(apperr.Label, "label", req.Path, fmt.Errorf("%w: blank label", ErrNoLabel))
	}
	return label, nil
}

// New builds the labeler selected by cfg.Mode. in and out are used by the prompt mode.
func New(cfg *config.LabelsConfig, ex *extract.Extractor, in io.Reader, out io.Writer) (Labeler, error) {
	switch cfg.Mode {
	case "sheet", "":
		return NewSheet(cfg.SheetPath), nil
	case "prompt":
		return NewPrompt(in, out), nil
	case "extract":
		return NewExtract(ex), nil
	case "chain":
		return Chain{NewSheet(cfg.SheetPath), NewExtract(ex)}, nil
	default:
		return nil, apperr.Errorf(apperr.Config, "labeler", "", "unknown labels mode %q", cfg.Mode)
	}
}

// Chain tries each labeler in order and returns the first label.
type Chain []Labeler

// Label returns the first successful label, or the last error.
func (c Chain) Label(ctx context.Context, req Request) (string, error) {
	var lastErr error = apperr.New(apperr.Label, "label", req.Path, ErrNoLabel)
	for _, l := range c {
		label, err := l.Label(ctx, req)
		if err == nil {
			return label, nil
		}
		if ctx.Err() != nil {
			return finish(req, "", ctx.Err())
		}
		lastErr = err
	}
	return finish(req, "", lastErr)
}
