package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/attendance"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/gallery"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/vector"
)

// EnrollmentService cadastra, altera e remove identidades, mantendo a
// galeria em memória e o banco em sincronia.
type EnrollmentService struct {
	repo     repository.IdentityRepositoryInterface
	gallery  *gallery.Gallery
	provider provider.EmbeddingProvider
	ledger   *attendance.Ledger
}

func NewEnrollmentService(
	repo repository.IdentityRepositoryInterface,
	g *gallery.Gallery,
	p provider.EmbeddingProvider,
	ledger *attendance.Ledger,
) *EnrollmentService {
	return &EnrollmentService{
		repo:     repo,
		gallery:  g,
		provider: p,
		ledger:   ledger,
	}
}

// Enroll cadastra uma pessoa a partir de uma foto com exatamente uma face
func (s *EnrollmentService) Enroll(ctx context.Context, name, identifier string, image []byte) (*domain.Identity, error) {
	if name == "" || identifier == "" {
		return nil, domain.ErrValidationFailed
	}

	faces, err := s.provider.Detect(ctx, image)
	if err != nil {
		return nil, translateProviderError(err)
	}

	if len(faces) == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	if len(faces) > 1 {
		return nil, domain.ErrMultipleFaces
	}

	identity := &domain.Identity{
		Name:       name,
		Identifier: identifier,
		Embedding:  vector.Normalize(faces[0].Embedding),
		Image:      image,
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, err
	}

	s.gallery.Add(*identity)
	return identity, nil
}

// List retorna as identidades ativas, sem embeddings nem imagens
func (s *EnrollmentService) List(ctx context.Context) ([]domain.Identity, error) {
	return s.repo.ListActive(ctx)
}

// Get retorna uma identidade pelo id
func (s *EnrollmentService) Get(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	identity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity.Deleted {
		return nil, domain.ErrIdentityNotFound
	}
	return identity, nil
}

// GetImage retorna a foto de cadastro de uma identidade
func (s *EnrollmentService) GetImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return s.repo.GetImage(ctx, id)
}

// Rename altera o nome de exibição e atualiza a galeria
func (s *EnrollmentService) Rename(ctx context.Context, id uuid.UUID, name string) (*domain.Identity, error) {
	if name == "" {
		return nil, domain.ErrValidationFailed
	}

	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}

	identity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.gallery.Remove(id)
	s.gallery.Add(*identity)
	return identity, nil
}

// Delete remove a identidade das buscas futuras preservando o histórico.
// O estado de deduplicação da pessoa é descartado junto.
func (s *EnrollmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.gallery.Remove(id)
	if s.ledger != nil {
		s.ledger.Forget(id)
	}
	return nil
}

// translateProviderError maps embedding-provider failures onto API errors
func translateProviderError(err error) error {
	switch {
	case errors.Is(err, provider.ErrDecodeFailed):
		return domain.ErrInvalidImage.WithError(err)
	case errors.Is(err, provider.ErrServiceUnavailable):
		return domain.ErrEmbeddingService.WithError(err)
	default:
		return fmt.Errorf("detect faces: %w", err)
	}
}
