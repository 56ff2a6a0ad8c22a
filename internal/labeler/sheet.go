package labeler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/sense/internal/apperr"
	"gopkg.in/yaml.v3"
)

// SheetRow is one line of a label sheet.
type SheetRow struct {
	Path  string `yaml:"path"`
	Hash  string `yaml:"hash,omitempty"`
	Label string `yaml:"label"`
}

var sheetHeader = []string{"path", "hash", "label"}

// Sheet reads labels from a user-edited CSV (path,hash,label) or YAML (path: label) file.
// The file is re-read whenever its modification time or size changes.
type Sheet struct {
	path string

	mu      sync.Mutex
	rows    map[string]SheetRow
	modTime time.Time
	size    int64
}

// NewSheet returns a labeler backed by the sheet at path.
func NewSheet(path string) *Sheet {
	return &Sheet{path: path}
}

// Label returns the sheet label for req.Path. A row whose hash is set and differs
// from req.Hash is stale: the file changed after it was labeled.
func (s *Sheet) Label(ctx context.Context, req Request) (string, error) {
	rows, err := s.load()
	if err != nil {
		return finish(req, "", err)
	}
	row, ok := rows[req.Path]
	if !ok {
		return finish(req, "", fmt.Errorf("%w in %s", ErrNoLabel, filepath.Base(s.path)))
	}
	if row.Hash != "" && req.Hash != "" && row.Hash != req.Hash {
		return finish(req, "", fmt.Errorf("label sheet row is stale: hash %.12s, file is %.12s", row.Hash, req.Hash))
	}
	return finish(req, row.Label, nil)
}

// load returns the cached rows, reading the sheet again when it changed on disk.
// Errors are never cached.
func (s *Sheet) load() (map[string]SheetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, err := os.Stat(s.path)
	if err != nil {
		s.rows = nil
		return nil, apperr.New(apperr.Label, "read sheet", s.path, err)
	}
	if s.rows != nil && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return s.rows, nil
	}
	rows, err := ReadSheet(s.path)
	if err != nil {
		s.rows = nil
		return nil, err
	}
	s.rows, s.modTime, s.size = rows, info.ModTime(), info.Size()
	return rows, nil
}

// ReadSheet parses the sheet at path, choosing YAML for .yaml/.yml and CSV otherwise.
func ReadSheet(path string) (map[string]SheetRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.Label, "read sheet", path, err)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLSheet(f, path)
	default:
		return decodeCSVSheet(f, path)
	}
}

func decodeCSVSheet(r io.Reader, path string) (map[string]SheetRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return map[string]SheetRow{}, nil
	}
	if err != nil {
		return nil, apperr.New(apperr.Label, "read sheet", path, err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	pathCol, okPath := col["path"]
	labelCol, okLabel := col["label"]
	if !okPath || !okLabel {
		return nil, apperr.Errorf(apperr.Label, "read sheet", path, "header must contain path and label columns")
	}
	hashCol, okHash := col["hash"]

	rows := map[string]SheetRow{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.New(apperr.Label, "read sheet", path, err)
		}
		row := SheetRow{Path: field(rec, pathCol), Label: field(rec, labelCol)}
		if okHash {
			row.Hash = field(rec, hashCol)
		}
		if row.Path == "" || strings.TrimSpace(row.Label) == "" {
			continue
		}
		rows[row.Path] = row
	}
	return rows, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func decodeYAMLSheet(r io.Reader, path string) (map[string]SheetRow, error) {
	var m map[string]string
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperr.New(apperr.Label, "read sheet", path, err)
	}
	rows := make(map[string]SheetRow, len(m))
	for p, label := range m {
		if strings.TrimSpace(label) == "" {
			continue
		}
		rows[p] = SheetRow{Path: p, Label: label}
	}
	return rows, nil
}

// WriteSheet writes rows as CSV with a path,hash,label header.
func WriteSheet(w io.Writer, rows []SheetRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sheetHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Path, r.Hash, r.Label}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
