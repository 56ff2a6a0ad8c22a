package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/hyperjump/sense/internal/config"
	"github.com/hyperjump/sense/internal/fileid"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/scanner"
	"github.com/hyperjump/sense/internal/storage"
	"go.uber.org/zap"
)

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"dog on a beach", "-limit", "3"},
			expected: []string{"-limit", "3", "dog on a beach"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-ext", "jpg", "red car"},
			expected: []string{"-ext", "jpg", "red car"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"invoice"},
			expected: []string{"invoice"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "--output", "json"},
			expected: []string{"--output", "json", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderArgs(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("reorderArgs() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJoinQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"sunset"}, "sunset"},
		{"multiple words", []string{"sunset", "beach"}, "sunset beach"},
		{"single quoted phrase", []string{"sunset beach"}, "sunset beach"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinQuery(tt.args); got != tt.expected {
				t.Errorf("joinQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
}

func sameFile(t *testing.T, a, b string) bool {
	t.Helper()
	ca, _ := filepath.EvalSymlinks(a)
	cb, _ := filepath.EvalSymlinks(b)
	return ca == cb
}

func TestLoadConfig_prefersCwdConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
storage:
  database_path: "./state/index.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if !sameFile(t, resolved, configPath) {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if filepath.Base(cfg.Storage.DatabasePath) != "index.db" || !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Errorf("database path not expanded: %s", cfg.Storage.DatabasePath)
	}
}

func TestLoadConfig_homeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())
	homeConfig := filepath.Join(home, ".sense", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(homeConfig), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(homeConfig, []byte("server:\n  port: 9100\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if !sameFile(t, resolved, homeConfig) {
		t.Errorf("resolved path = %s, want %s", resolved, homeConfig)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
}

func TestLoadConfig_defaultsWhenNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	chdir(t, dir)

	cfg, resolved, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(resolved) != "config.yaml" {
		t.Errorf("resolved path = %s, want ./config.yaml", resolved)
	}
	if cfg.Search.DefaultLimit != 8 {
		t.Errorf("default limit = %d, want 8", cfg.Search.DefaultLimit)
	}
	if !sameFile(t, cfg.Root, dir) {
		t.Errorf("root = %s, want %s", cfg.Root, dir)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestRetryConfig(t *testing.T) {
	rc := retryConfig(&config.IndexerConfig{MaxRetries: 5, BaseDelayMs: 10, MaxDelayMs: 100})
	if rc.MaxRetries != 5 || rc.BaseDelay != 10*time.Millisecond || rc.MaxDelay != 100*time.Millisecond {
		t.Errorf("unexpected retry config: %+v", rc)
	}
	def := retryConfig(&config.IndexerConfig{})
	if def.MaxRetries != 3 || def.Multiplier != 2.0 {
		t.Errorf("zero values should keep defaults: %+v", def)
	}
}

func TestExportRows(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{"a.txt": "alpha", "sub/b.md": "beta", ".hidden.txt": "x"}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	store := storage.NewMemoryStore()
	ctx := context.Background()
	err := store.Upsert(ctx, &models.FileRecord{
		Path: "a.txt", Hash: fileid.HashBytes([]byte("alpha")), Label: "first letter", Embedding: []float32{1, 0},
	})
	if err != nil {
		t.Fatal(err)
	}

	rows, err := exportRows(ctx, store, scanner.New(root, nil, false), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}
	if rows[0].Path != "a.txt" || rows[0].Label != "first letter" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Path != "sub/b.md" || rows[1].Label != "" || rows[1].Hash != fileid.HashBytes([]byte("beta")) {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCheckImages(t *testing.T) {
	root := t.TempDir()
	data := pngBytes(t)
	write := func(name string, content []byte) {
		if err := os.WriteFile(filepath.Join(root, name), content, 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("good.png", data)
	write("wrong.jpg", data)
	write("junk.gif", []byte("not an image"))
	write("notes.txt", []byte("ignored"))

	report, err := checkImages(context.Background(), root, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.Correct != 1 || report.Mismatched != 1 || report.Unknown != 1 || report.Fixed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	want := "wrong.jpg: claimed .jpg, detected .png"
	found := false
	for _, l := range report.Lines {
		if l == want {
			found = true
		}
	}
	if !found {
		t.Errorf("missing %q in %v", want, report.Lines)
	}

	report, err = checkImages(context.Background(), root, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if report.Fixed != 1 || report.Mismatched != 0 {
		t.Errorf("unexpected report after fix: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "wrong.png")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "wrong.jpg")); !os.IsNotExist(err) {
		t.Error("original file should be gone")
	}
}

func TestCheckImages_fixNeverOverwrites(t *testing.T) {
	root := t.TempDir()
	data := pngBytes(t)
	for _, name := range []string{"photo.jpg", "photo.png"} {
		if err := os.WriteFile(filepath.Join(root, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	report, err := checkImages(context.Background(), root, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if report.Fixed != 0 || report.Mismatched != 1 || report.Correct != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, "photo.jpg")); err != nil {
		t.Error("mismatched file should be left in place")
	}
}
