package insight

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// Provider implements provider.EmbeddingProvider backed by the insight sidecar
type Provider struct {
	client *Client
}

// NewProvider creates a new insight-backed embedding provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Detect finds faces in a JPEG or PNG image and returns their embeddings
func (p *Provider) Detect(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", provider.ErrDecodeFailed)
	}

	encoded := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Detect(ctx, encoded)
	if err != nil {
		if errors.Is(err, ErrDecodeFailed) {
			return nil, fmt.Errorf("%w: %v", provider.ErrDecodeFailed, err)
		}
		if errors.Is(err, ErrInsightUnavailable) {
			return nil, fmt.Errorf("%w: %v", provider.ErrServiceUnavailable, err)
		}
		return nil, err
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, provider.DetectedFace{
			Box: provider.BoundingBox{
				X:      f.Box.X,
				Y:      f.Box.Y,
				Width:  f.Box.W,
				Height: f.Box.H,
			},
			Embedding: f.Embedding,
		})
	}

	return faces, nil
}
