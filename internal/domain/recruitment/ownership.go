package recruitment

import (
	"context"

	"hr-portal/internal/domain/resources"
)

// Candidatos y postulaciones son dos tipos de recurso: cada uno con su Locator.

type candidateLocator struct{ repo CandidateRepository }

func (l candidateLocator) OwnerOf(ctx context.Context, id int64) (string, error) {
	c, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return c.OwnerAdminID, nil
}

func (l candidateLocator) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return l.repo.ClaimOwner(ctx, id, adminID)
}

type applicationLocator struct{ repo ApplicationRepository }

func (l applicationLocator) OwnerOf(ctx context.Context, id int64) (string, error) {
	a, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return a.OwnerAdminID, nil
}

func (l applicationLocator) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return l.repo.ClaimOwner(ctx, id, adminID)
}

func (s *Service) CandidateLocator() resources.Locator {
	return candidateLocator{repo: s.candidates}
}

func (s *Service) ApplicationLocator() resources.Locator {
	return applicationLocator{repo: s.applications}
}
