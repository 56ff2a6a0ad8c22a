package models

import (
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name      string
		query     *SearchQuery
		wantErr   bool
		wantLimit int
	}{
		{"empty query", &SearchQuery{Query: ""}, true, 0},
		{"blank query", &SearchQuery{Query: "   "}, true, 0},
		{"valid query", &SearchQuery{Query: "cat", Limit: 3}, false, 3},
		{"sets default limit", &SearchQuery{Query: "x", Limit: 0}, false, 8},
		{"negative limit uses default", &SearchQuery{Query: "x", Limit: -1}, false, 8},
		{"caps limit", &SearchQuery{Query: "x", Limit: 500}, false, 100},
		{"bad pattern", &SearchQuery{Query: "x", Filter: Filter{Pattern: "[a"}}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(8, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.query.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.query.Limit, tt.wantLimit)
			}
		})
	}
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		path   string
		want   bool
	}{
		{"zero filter", Filter{}, "a/b.png", true},
		{"ext with dot", Filter{Ext: ".jpg"}, "x.jpg", true},
		{"ext without dot", Filter{Ext: "jpg"}, "x.jpg", true},
		{"ext case-insensitive", Filter{Ext: "JPG"}, "dir/x.jpg", true},
		{"ext mismatch", Filter{Ext: "jpg"}, "x.jpeg", false},
		{"ext no extension", Filter{Ext: "jpg"}, "README", false},
		{"base name glob", Filter{Pattern: "cat*"}, "pets/cat-01.png", true},
		{"base name glob miss", Filter{Pattern: "dog*"}, "pets/cat-01.png", false},
		{"full path glob", Filter{Pattern: "pets/*.png"}, "pets/cat-01.png", true},
		{"full path glob other dir", Filter{Pattern: "pets/*.png"}, "misc/cat-01.png", false},
		{"and both ok", Filter{Ext: "png", Pattern: "cat*"}, "cat.png", true},
		{"and ext fails", Filter{Ext: "jpg", Pattern: "cat*"}, "cat.png", false},
		{"and pattern fails", Filter{Ext: "png", Pattern: "dog*"}, "cat.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewSearchResponse(t *testing.T) {
	resp := NewSearchResponse("q", []SearchResult{{Path: "b.jpg", Score: 1}, {Path: "a.jpg", Score: 0.5}})
	if len(resp.Files) != 2 || resp.Files[0] != "b.jpg" || resp.Files[1] != "a.jpg" {
		t.Errorf("Files = %v", resp.Files)
	}
	empty := NewSearchResponse("q", nil)
	if empty.Results == nil || empty.Files == nil {
		t.Error("empty response should have non-nil slices")
	}
}

func TestFileRecord_Clone(t *testing.T) {
	r := &FileRecord{Path: "a", Hash: "h", Label: "l", Embedding: []float32{1, 2}}
	c := r.Clone()
	c.Embedding[0] = 9
	if r.Embedding[0] != 1 {
		t.Error("Clone shares embedding storage")
	}
	var nilRec *FileRecord
	if nilRec.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
