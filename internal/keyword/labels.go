// Package keyword keeps a Bleve full-text index over file labels for exact-word lookup.
// The index is derived from the store and can always be rebuilt from it.
package keyword

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/sense/internal/models"
)

// Hit is one keyword match.
type Hit struct {
	Path  string  `json:"path"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SearchOptions tunes a keyword query. Nil means defaults.
type SearchOptions struct {
	// NameBoost multiplies matches in the file name relative to the label. Default 2.
	NameBoost float64
	// Fuzziness is the maximum edit distance per term; 0 disables fuzzy matching.
	Fuzziness int
}

type labelDoc struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// LabelIndex is safe for concurrent use.
type LabelIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	// Standard analyzer: lowercase and tokenize without stemming, so "bayes" matches "Bayes" exactly.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	text.Store = true
	doc.AddFieldMappingsAt("label", text)
	doc.AddFieldMappingsAt("name", text)
	kw := bleve.NewKeywordFieldMapping()
	kw.Store = true
	doc.AddFieldMappingsAt("path", kw)
	im.DefaultMapping = doc
	return im
}

// OpenLabelIndex opens the index at dir, creating it when absent.
func OpenLabelIndex(dir string) (*LabelIndex, error) {
	if _, err := os.Stat(dir); err == nil {
		idx, err := bleve.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open label index: %w", err)
		}
		return &LabelIndex{index: idx}, nil
	}
	idx, err := bleve.New(dir, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create label index: %w", err)
	}
	return &LabelIndex{index: idx}, nil
}

// NewMemLabelIndex returns an index that lives only in memory.
func NewMemLabelIndex() (*LabelIndex, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create label index: %w", err)
	}
	return &LabelIndex{index: idx}, nil
}

// nameTerms makes "trips/beach_sunset.jpg" searchable as "beach sunset jpg".
func nameTerms(key string) string {
	return strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(path.Base(key))
}

// Index adds or replaces the label of path.
func (l *LabelIndex) Index(key, label string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index.Index(key, labelDoc{Path: key, Name: nameTerms(key), Label: label})
}

// Delete removes path from the index. Unknown paths are ignored.
func (l *LabelIndex) Delete(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index.Delete(key)
}

// DocCount returns the number of indexed labels.
func (l *LabelIndex) DocCount() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.DocCount()
}

// Rebuild replaces the index content with records.
func (l *LabelIndex) Rebuild(records []*models.FileRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	keep := make(map[string]bool, len(records))
	batch := l.index.NewBatch()
	for _, r := range records {
		keep[r.Path] = true
		if err := batch.Index(r.Path, labelDoc{Path: r.Path, Name: nameTerms(r.Path), Label: r.Label}); err != nil {
			return fmt.Errorf("rebuild label index: %w", err)
		}
	}
	count, err := l.index.DocCount()
	if err != nil {
		return fmt.Errorf("rebuild label index: %w", err)
	}
	if count > 0 {
		req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
		req.Size = int(count)
		res, err := l.index.Search(req)
		if err != nil {
			return fmt.Errorf("rebuild label index: %w", err)
		}
		for _, hit := range res.Hits {
			if !keep[hit.ID] {
				batch.Delete(hit.ID)
			}
		}
	}
	if err := l.index.Batch(batch); err != nil {
		return fmt.Errorf("rebuild label index: %w", err)
	}
	return nil
}

// Search returns up to limit labels matching text, best first.
func (l *LabelIndex) Search(text string, limit int, opts *SearchOptions) ([]Hit, error) {
	if strings.TrimSpace(text) == "" || limit <= 0 {
		return nil, nil
	}
	nameBoost := 2.0
	fuzziness := 0
	if opts != nil {
		if opts.NameBoost > 0 {
			nameBoost = opts.NameBoost
		}
		fuzziness = opts.Fuzziness
	}
	q := bleve.NewDisjunctionQuery(
		fieldQuery(text, "label", 1, fuzziness),
		fieldQuery(text, "name", nameBoost, fuzziness),
	)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"label"}

	l.mu.RLock()
	res, err := l.index.Search(req)
	l.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("label search failed: %w", err)
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		label, _ := h.Fields["label"].(string)
		hits = append(hits, Hit{Path: h.ID, Label: label, Score: h.Score})
	}
	return hits, nil
}

// fieldQuery matches text on one field, as a disjunction of fuzzy terms when fuzziness > 0.
func fieldQuery(text, field string, boost float64, fuzziness int) blevequery.Query {
	if fuzziness <= 0 {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	terms := strings.Fields(strings.ToLower(text))
	qs := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		qs = append(qs, fq)
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// Close closes the index.
func (l *LabelIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index.Close()
}
