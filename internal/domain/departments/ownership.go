package departments

import "context"

// OwnerOf y ClaimOwner hacen del Service un resources.Locator.
func (s *Service) OwnerOf(ctx context.Context, id int64) (string, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return d.OwnerAdminID, nil
}

func (s *Service) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return s.repo.ClaimOwner(ctx, id, adminID)
}
