// Package models defines core data structures for indexed files, queries, and results.
package models

import "time"

// FileRecord is one indexed file. Hash, Label, and Embedding are always written together.
type FileRecord struct {
	Path      string    `json:"path"`
	Hash      string    `json:"hash"`
	Label     string    `json:"label"`
	Embedding []float32 `json:"-"`
}

// Clone returns a deep copy so callers never share the embedding slice with a store.
func (r *FileRecord) Clone() *FileRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Embedding = append([]float32(nil), r.Embedding...)
	return &c
}

// Failure is one file that could not be committed during an index run.
type Failure struct {
	Path   string `json:"path"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// IndexSummary reports the outcome of an index run.
type IndexSummary struct {
	RunID     string        `json:"run_id"`
	Root      string        `json:"root"`
	Committed int           `json:"committed"`
	Failed    int           `json:"failed"`
	Removed   int           `json:"removed"`
	Unchanged int           `json:"unchanged"`
	Failures  []Failure     `json:"failures,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// IndexStatus describes the current state of the index.
type IndexStatus struct {
	Records        int    `json:"records"`
	Dimension      int    `json:"dimension"`
	LabelDocs      uint64 `json:"label_docs"`
	Running        bool   `json:"running"`
	DiskUsageBytes int64  `json:"disk_usage_bytes"`
	DatabasePath   string `json:"database_path,omitempty"`
	LabelIndexPath string `json:"label_index_path,omitempty"`
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
}
