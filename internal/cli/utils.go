// Package cli formats command output for sense.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/sense/internal/keyword"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one path per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes ranked results to w. Text prints "xx.xx%: path" per result.
func WriteSearchResults(w io.Writer, query string, results []models.SearchResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, models.NewSearchResponse(query, results))
	case OutputCompact:
		for _, r := range results {
			fmt.Fprintln(w, r.Path)
		}
	default:
		if len(results) == 0 {
			fmt.Fprintln(w, "No matching files.")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(w, "%s: %s\n", FormatScore(r.Score), r.Path)
		}
	}
	return nil
}

// FormatScore renders a similarity as a percentage with two decimals.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}

// WriteLabelHits writes keyword matches over labels.
func WriteLabelHits(w io.Writer, query string, hits []keyword.Hit, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if hits == nil {
			hits = []keyword.Hit{}
		}
		return writeJSON(w, map[string]interface{}{"query": query, "hits": hits})
	case OutputCompact:
		for _, h := range hits {
			fmt.Fprintln(w, h.Path)
		}
	default:
		if len(hits) == 0 {
			fmt.Fprintln(w, "No matching labels.")
			return nil
		}
		for _, h := range hits {
			fmt.Fprintf(w, "%s  %s\n", h.Path, utils.Truncate(h.Label, 80))
		}
	}
	return nil
}

// WriteSummary reports an index run: counts first, then one line per failure with its reason.
func WriteSummary(w io.Writer, s *models.IndexSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "Indexed %d, failed %d, removed %d, unchanged %d in %s\n",
		s.Committed, s.Failed, s.Removed, s.Unchanged, s.Duration.Round(time.Millisecond))
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  %s [%s]: %s\n", f.Path, f.Stage, f.Reason)
	}
	return nil
}

// WriteStatus reports the state of the index.
func WriteStatus(w io.Writer, st *models.IndexStatus, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "records:            %d   # indexed files\n", st.Records)
	fmt.Fprintf(w, "dimension:          %d   # embedding size, 0 when empty\n", st.Dimension)
	fmt.Fprintf(w, "label_docs:         %d   # entries in the label index\n", st.LabelDocs)
	fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + label index on disk\n", st.DiskUsageBytes)
	fmt.Fprintf(w, "running:            %t\n", st.Running)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# configuration")
	if st.Provider != "" {
		fmt.Fprintf(w, "provider:           %s\n", st.Provider)
	}
	if st.Model != "" {
		fmt.Fprintf(w, "model:              %s\n", st.Model)
	}
	if st.DatabasePath != "" {
		fmt.Fprintf(w, "database_path:      %s\n", st.DatabasePath)
	}
	if st.LabelIndexPath != "" {
		fmt.Fprintf(w, "label_index_path:   %s\n", st.LabelIndexPath)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
