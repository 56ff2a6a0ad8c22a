package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/sense/internal/keyword"
	"github.com/hyperjump/sense/internal/models"
)

var sampleResults = []models.SearchResult{
	{Path: "b.jpg", Score: 1},
	{Path: "c.png", Score: 0.8},
	{Path: "a.jpg", Score: 0.1234},
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, "q", sampleResults, OutputText); err != nil {
		t.Fatal(err)
	}
	want := "100.00%: b.jpg\n80.00%: c.png\n12.34%: a.jpg\n"
	if buf.String() != want {
		t.Errorf("text output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteSearchResults_textEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, "q", nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No matching files") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, "q", sampleResults, OutputCompact); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "b.jpg\nc.png\na.jpg\n" {
		t.Errorf("compact output: %q", buf.String())
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, "sunset", sampleResults, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "sunset" || len(decoded.Files) != 3 || decoded.Files[0] != "b.jpg" {
		t.Errorf("decoded: %+v", decoded)
	}
	if len(decoded.Results) != 3 || decoded.Results[1].Score != 0.8 {
		t.Errorf("results: %+v", decoded.Results)
	}
}

func TestWriteSearchResults_JSON_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, "q", nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"files": []`) {
		t.Errorf("empty result should encode files as []:\n%s", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	s := &models.IndexSummary{
		Committed: 2, Failed: 1, Removed: 3, Unchanged: 4,
		Duration: 1500 * time.Millisecond,
		Failures: []models.Failure{{Path: "b.jpg", Stage: "embed", Reason: "provider error"}},
	}
	var buf bytes.Buffer
	if err := WriteSummary(&buf, s, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"Indexed 2, failed 1, removed 3, unchanged 4 in 1.5s", "b.jpg [embed]: provider error"} {
		if !strings.Contains(out, sub) {
			t.Errorf("summary missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteLabelHits(t *testing.T) {
	hits := []keyword.Hit{{Path: "trips/beach.jpg", Label: "sunset over the beach", Score: 1.2}}
	var buf bytes.Buffer
	if err := WriteLabelHits(&buf, "beach", hits, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "trips/beach.jpg  sunset over the beach") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	st := &models.IndexStatus{Records: 3, Dimension: 1024, Provider: "remote", DatabasePath: "/x/index.db"}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"records:            3", "dimension:          1024", "provider:           remote", "/x/index.db"} {
		if !strings.Contains(buf.String(), sub) {
			t.Errorf("status missing %q:\n%s", sub, buf.String())
		}
	}
}
