package models

// SearchResult is a single ranked hit.
type SearchResult struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// SearchResponse is the HTTP search response. Files mirrors Results in rank order.
type SearchResponse struct {
	Query   string         `json:"query"`
	Files   []string       `json:"files"`
	Results []SearchResult `json:"results"`
}

// NewSearchResponse builds a response from ranked results.
func NewSearchResponse(query string, results []SearchResult) *SearchResponse {
	files := make([]string, len(results))
	for i, r := range results {
		files[i] = r.Path
	}
	if results == nil {
		results = []SearchResult{}
	}
	return &SearchResponse{Query: query, Files: files, Results: results}
}
