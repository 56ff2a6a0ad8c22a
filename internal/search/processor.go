package search

import (
	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/models"
)

// ProcessQuery validates the query and applies the limit defaults. Rejections are Config errors
// so callers can tell a bad request from a failed search.
func ProcessQuery(query *models.SearchQuery, defaultLimit, maxLimit int) error {
	if query == nil {
		return apperr.Errorf(apperr.Config, "search", "", "nil query")
	}
	if err := query.Validate(defaultLimit, maxLimit); err != nil {
		return apperr.New(apperr.Config, "search", "", err)
	}
	return nil
}
