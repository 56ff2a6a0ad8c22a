// Package scanner walks a directory tree and reports the identity of every supported file.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/extract"
	"github.com/hyperjump/sense/internal/fileid"
)

// ErrSkipped is returned by ScanFile for a path the scan would not report:
// hidden, unsupported, not a regular file, or outside the root.
var ErrSkipped = errors.New("file not eligible for indexing")

// Entry is one scanned file.
type Entry struct {
	Path    string // store key, relative to the root
	AbsPath string
	Hash    string
	Ext     string // lower case, no dot
	Dir     bool   // set with a walk error when the unreadable entry is a directory
}

// Validator checks that content decodes as the type its path claims.
type Validator interface {
	Supported(ext string) bool
	Validate(path string, content []byte) error
}

// Scanner is stateless; every Scan call walks the tree again.
type Scanner struct {
	Root          string
	Extensions    []string // with or without dots; empty means everything the validator supports
	IncludeHidden bool
	Validator     Validator
}

// New returns a Scanner for root that validates with the default extractor.
func New(root string, extensions []string, includeHidden bool) *Scanner {
	return &Scanner{
		Root:          root,
		Extensions:    extensions,
		IncludeHidden: includeHidden,
		Validator:     extract.NewExtractor(),
	}
}

// Scan lazily yields one Entry per regular supported file below Root, in lexical order.
// A file that cannot be read yields an IO error and one whose content does not match its
// extension yields a Decode error; either way the walk continues. Symlinks are not followed.
func (s *Scanner) Scan(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		root, err := filepath.Abs(s.Root)
		if err != nil {
			yield(Entry{}, apperr.New(apperr.IO, "scan", s.Root, err))
			return
		}
		allowed := s.allowed()
		stop := errors.New("stop")
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			key := ""
			if path != root {
				key, _ = fileid.Key(root, path)
			}
			if err != nil {
				if !yield(Entry{Dir: d != nil && d.IsDir()}, apperr.New(apperr.IO, "walk", key, err)) {
					return stop
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && !s.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !s.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			ext := fileid.Ext(path)
			if !allowed(ext) {
				return nil
			}
			entry, err := s.read(path, key, ext)
			if !yield(entry, err) {
				return stop
			}
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, stop) {
			yield(Entry{}, walkErr)
		}
	}
}

// ScanFile returns the Entry for a single file, or ErrSkipped when Scan would not report it.
func (s *Scanner) ScanFile(absPath string) (Entry, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return Entry{}, apperr.New(apperr.IO, "scan", s.Root, err)
	}
	key, err := fileid.Key(root, absPath)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	if !s.IncludeHidden && fileid.Hidden(key) {
		return Entry{}, fmt.Errorf("%w: %s is hidden", ErrSkipped, key)
	}
	ext := fileid.Ext(key)
	if !s.allowed()(ext) {
		return Entry{}, fmt.Errorf("%w: unsupported extension %q", ErrSkipped, ext)
	}
	info, err := os.Lstat(absPath)
	if err != nil {
		return Entry{}, apperr.New(apperr.IO, "stat", key, err)
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("%w: %s is not a regular file", ErrSkipped, key)
	}
	return s.read(absPath, key, ext)
}

// Key returns the store key of absPath under Root.
func (s *Scanner) Key(absPath string) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	return fileid.Key(root, absPath)
}

func (s *Scanner) read(absPath, key, ext string) (Entry, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return Entry{Path: key, AbsPath: absPath, Ext: ext}, apperr.New(apperr.IO, "read", key, err)
	}
	entry := Entry{Path: key, AbsPath: absPath, Hash: fileid.HashBytes(content), Ext: ext}
	if s.Validator != nil {
		if err := s.Validator.Validate(key, content); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

func (s *Scanner) allowed() func(ext string) bool {
	set := make(map[string]bool, len(s.Extensions))
	for _, e := range s.Extensions {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	return func(ext string) bool {
		if ext == "" {
			return false
		}
		if s.Validator != nil && !s.Validator.Supported(ext) {
			return false
		}
		return len(set) == 0 || set[ext]
	}
}
