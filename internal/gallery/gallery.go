// Package gallery mantém o índice em memória de identidades cadastradas.
// Leitores trabalham sobre snapshots imutáveis, escritores trocam o
// snapshot inteiro sob lock.
package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/vector"
)

// Match é o resultado de uma busca por vizinho mais próximo
type Match struct {
	Identity domain.Identity
	Score    float64
}

type Gallery struct {
	repo   repository.IdentityRepositoryInterface
	logger *slog.Logger

	mu       sync.Mutex
	snapshot []domain.Identity
}

func New(repo repository.IdentityRepositoryInterface, logger *slog.Logger) *Gallery {
	return &Gallery{
		repo:     repo,
		logger:   logger,
		snapshot: []domain.Identity{},
	}
}

// Load substitui o snapshot pelo conteúdo atual do banco
func (g *Gallery) Load(ctx context.Context) error {
	identities, err := g.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	g.mu.Lock()
	g.snapshot = identities
	g.mu.Unlock()

	g.logger.Info("gallery loaded", slog.Int("identities", len(identities)))
	return nil
}

// Snapshot retorna a fatia imutável corrente. Chamadores não devem modificá-la.
func (g *Gallery) Snapshot() []domain.Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot
}

// Size retorna o número de identidades ativas no índice
func (g *Gallery) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.snapshot)
}

// Add acrescenta uma identidade ao índice sem tocar nas entradas existentes
func (g *Gallery) Add(identity domain.Identity) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := make([]domain.Identity, len(g.snapshot)+1)
	copy(next, g.snapshot)
	next[len(g.snapshot)] = identity
	g.snapshot = next
}

// Remove tira a identidade do índice. Buscas em snapshots antigos ainda
// podem devolvê-la até trocarem de snapshot.
func (g *Gallery) Remove(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := make([]domain.Identity, 0, len(g.snapshot))
	for _, identity := range g.snapshot {
		if identity.ID != id {
			next = append(next, identity)
		}
	}
	g.snapshot = next
}

// Nearest devolve a identidade mais similar ao embedding e o score coseno.
// Em empate exato vence o menor id, então o resultado independe da ordem
// do snapshot. Retorna false com índice vazio.
func (g *Gallery) Nearest(embedding []float64) (Match, bool) {
	snapshot := g.Snapshot()
	if len(snapshot) == 0 {
		return Match{}, false
	}

	best := Match{Score: -1}
	found := false
	for _, identity := range snapshot {
		score := vector.Cosine(embedding, identity.Embedding)
		switch {
		case !found || score > best.Score:
			best = Match{Identity: identity, Score: score}
			found = true
		case score == best.Score && identity.ID.String() < best.Identity.ID.String():
			best = Match{Identity: identity, Score: score}
		}
	}

	return best, found
}
