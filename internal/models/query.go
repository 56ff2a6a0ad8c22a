package models

import (
	"fmt"
	"path"
	"strings"
)

// Filter restricts search candidates. Both fields are optional; when both are set
// a record must satisfy both.
type Filter struct {
	// Ext is a file extension with or without the leading dot, compared case-insensitively.
	Ext string `json:"ext,omitempty"`
	// Pattern is a path.Match glob. Without a "/" it is matched against the base name,
	// otherwise against the whole relative path.
	Pattern string `json:"pattern,omitempty"`
}

// IsZero reports whether the filter accepts everything.
func (f Filter) IsZero() bool {
	return f.Ext == "" && f.Pattern == ""
}

// Validate checks that Pattern is a well-formed glob.
func (f Filter) Validate() error {
	if f.Pattern == "" {
		return nil
	}
	if _, err := path.Match(f.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", f.Pattern, err)
	}
	return nil
}

// Match reports whether the stored path p passes the filter.
func (f Filter) Match(p string) bool {
	if f.Ext != "" {
		want := strings.ToLower(strings.TrimPrefix(f.Ext, "."))
		got := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
		if want != got {
			return false
		}
	}
	if f.Pattern != "" {
		target := p
		if !strings.Contains(f.Pattern, "/") {
			target = path.Base(p)
		}
		ok, err := path.Match(f.Pattern, target)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// SearchQuery is a similarity search request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	Filter
}

// Validate rejects empty queries and normalizes Limit: zero or negative becomes
// defaultLimit, values above maxLimit are capped.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q.Filter.Validate()
}
