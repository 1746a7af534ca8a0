package employees

import "context"

func (s *Service) OwnerOf(ctx context.Context, id int64) (string, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return e.OwnerAdminID, nil
}

func (s *Service) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return s.repo.ClaimOwner(ctx, id, adminID)
}
