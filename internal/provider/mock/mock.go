package mock

import (
	"context"
	"crypto/sha256"

	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/vector"
)

const embeddingDimension = 512

// Provider implementa provider.EmbeddingProvider para testes e desenvolvimento
type Provider struct{}

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{}
}

// Detect simula detecção de faces com embedding determinístico
func (p *Provider) Detect(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) < 100 {
		return nil, provider.ErrDecodeFailed
	}

	return []provider.DetectedFace{
		{
			Box: provider.BoundingBox{
				X:      10,
				Y:      10,
				Width:  200,
				Height: 200,
			},
			Embedding: generateEmbedding(image),
		},
	}, nil
}

// generateEmbedding gera embedding determinístico baseado no hash da imagem
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	return vector.Normalize(embedding)
}

var _ provider.EmbeddingProvider = (*Provider)(nil)
