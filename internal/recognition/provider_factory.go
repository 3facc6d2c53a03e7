package recognition

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/insight"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/mock"
)

// ProviderType defines supported embedding provider types
type ProviderType string

const (
	// ProviderTypeInsight is the InsightFace sidecar provider
	ProviderTypeInsight ProviderType = "insight"
	// ProviderTypeMock is the deterministic provider for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewEmbeddingProvider creates an EmbeddingProvider instance based on configuration
//
// Environment variables:
//   - PROVIDER_TYPE: "insight" or "mock" (default: "insight")
//   - INSIGHT_URL: InsightFace sidecar URL (default: "http://localhost:18081")
func NewEmbeddingProvider(cfg *config.Config) (provider.EmbeddingProvider, error) {
	providerType := ProviderType(cfg.ProviderType)

	switch providerType {
	case ProviderTypeMock:
		return mock.New(), nil

	case ProviderTypeInsight, "":
		return createInsightProvider(cfg), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.ProviderType, ProviderTypeInsight, ProviderTypeMock)
	}
}

// createInsightProvider creates an InsightFace sidecar provider instance
func createInsightProvider(cfg *config.Config) provider.EmbeddingProvider {
	insightConfig := insight.DefaultConfig()
	if cfg.InsightURL != "" {
		insightConfig.BaseURL = cfg.InsightURL
	}

	return insight.NewProvider(insightConfig)
}
