package embedding

import (
	"time"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/config"
)

// New builds the configured provider. The variant set is closed: remote or mock.
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case ProviderRemote, "":
		return NewRemoteEmbedder(cfg.BaseURL, cfg.Model, cfg.ResolveAPIKey(), cfg.Dimensions,
			WithTimeout(time.Duration(cfg.TimeoutSecs)*time.Second))
	case ProviderMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, apperr.Errorf(apperr.Config, "embedding provider", "", "unknown provider %q", cfg.Provider)
	}
}
