package postgres

import (
	"context"
	"time"

	"hr-portal/internal/domain/recruitment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CandidatesRepo struct {
	db *gorm.DB
}

func NewCandidatesRepo(db *gorm.DB) *CandidatesRepo {
	return &CandidatesRepo{db: db}
}

var _ recruitment.CandidateRepository = (*CandidatesRepo)(nil)

func (r *CandidatesRepo) Create(ctx context.Context, c recruitment.Candidate) (recruitment.Candidate, error) {
	row := candidateModelFrom(c)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return recruitment.Candidate{}, err
	}
	return row.toEntity(), nil
}

func (r *CandidatesRepo) GetByID(ctx context.Context, id int64) (recruitment.Candidate, error) {
	var row candidateModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if notFound(err) {
			return recruitment.Candidate{}, ErrNotFound
		}
		return recruitment.Candidate{}, err
	}
	return row.toEntity(), nil
}

func (r *CandidatesRepo) List(ctx context.Context, owner string) ([]recruitment.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]recruitment.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *CandidatesRepo) Update(ctx context.Context, c recruitment.Candidate) (recruitment.Candidate, error) {
	row := candidateModelFrom(c)
	res := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Select("full_name", "email", "phone", "notes", "updated_at").
		Updates(row)
	if res.Error != nil {
		return recruitment.Candidate{}, res.Error
	}
	if res.RowsAffected == 0 {
		return recruitment.Candidate{}, ErrNotFound
	}
	return row.toEntity(), nil
}

func (r *CandidatesRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &candidateModel{}, id)
}

func (r *CandidatesRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return claimOwner(ctx, r.db, &candidateModel{}, id, adminID)
}

type ApplicationsRepo struct {
	db *gorm.DB
}

func NewApplicationsRepo(db *gorm.DB) *ApplicationsRepo {
	return &ApplicationsRepo{db: db}
}

var _ recruitment.ApplicationRepository = (*ApplicationsRepo)(nil)

func (r *ApplicationsRepo) Create(ctx context.Context, a recruitment.JobApplication) (recruitment.JobApplication, error) {
	row := applicationModelFrom(a)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return recruitment.JobApplication{}, err
	}
	return row.toEntity(), nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id int64) (recruitment.JobApplication, error) {
	var row applicationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if notFound(err) {
			return recruitment.JobApplication{}, ErrNotFound
		}
		return recruitment.JobApplication{}, err
	}
	return row.toEntity(), nil
}

func (r *ApplicationsRepo) List(ctx context.Context, owner string) ([]recruitment.JobApplication, error) {
	return r.find(r.db.WithContext(ctx).Scopes(ownerScope(owner)))
}

func (r *ApplicationsRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]recruitment.JobApplication, error) {
	return r.find(r.db.WithContext(ctx).Where("candidate_id = ?", candidateID))
}

func (r *ApplicationsRepo) find(tx *gorm.DB) ([]recruitment.JobApplication, error) {
	var rows []applicationModel
	if err := tx.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]recruitment.JobApplication, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// Update no toca status: eso pasa por SetStatus.
func (r *ApplicationsRepo) Update(ctx context.Context, a recruitment.JobApplication) (recruitment.JobApplication, error) {
	row := applicationModelFrom(a)
	res := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Select("position", "notes", "updated_at").
		Updates(row)
	if res.Error != nil {
		return recruitment.JobApplication{}, res.Error
	}
	if res.RowsAffected == 0 {
		return recruitment.JobApplication{}, ErrNotFound
	}
	return row.toEntity(), nil
}

func (r *ApplicationsRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &applicationModel{}, id)
}

func (r *ApplicationsRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return claimOwner(ctx, r.db, &applicationModel{}, id, adminID)
}

func (r *ApplicationsRepo) SetStatus(ctx context.Context, id int64, from, to recruitment.ApplicationStatus, at time.Time) (recruitment.JobApplication, bool, error) {
	var rows []applicationModel
	res := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": at})
	if res.Error != nil {
		return recruitment.JobApplication{}, false, res.Error
	}
	if res.RowsAffected > 0 && len(rows) > 0 {
		return rows[0].toEntity(), true, nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return recruitment.JobApplication{}, false, err
	}
	return current, false, nil
}
