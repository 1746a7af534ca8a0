package postgres

import (
	"context"

	"hr-portal/internal/domain/departments"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepartmentsRepo struct {
	db *gorm.DB
}

func NewDepartmentsRepo(db *gorm.DB) *DepartmentsRepo {
	return &DepartmentsRepo{db: db}
}

var _ departments.Repository = (*DepartmentsRepo)(nil)

func (r *DepartmentsRepo) Create(ctx context.Context, d departments.Department) (departments.Department, error) {
	row := departmentModelFrom(d)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return departments.Department{}, err
	}
	return row.toEntity(), nil
}

func (r *DepartmentsRepo) GetByID(ctx context.Context, id int64) (departments.Department, error) {
	var row departmentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if notFound(err) {
			return departments.Department{}, ErrNotFound
		}
		return departments.Department{}, err
	}
	return row.toEntity(), nil
}

func (r *DepartmentsRepo) List(ctx context.Context, owner string) ([]departments.Department, error) {
	var rows []departmentModel
	if err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]departments.Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// Update no toca owner_admin_id: solo ClaimOwner lo asigna.
func (r *DepartmentsRepo) Update(ctx context.Context, d departments.Department) (departments.Department, error) {
	row := departmentModelFrom(d)
	res := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Select("name", "description", "updated_at").
		Updates(row)
	if res.Error != nil {
		return departments.Department{}, res.Error
	}
	if res.RowsAffected == 0 {
		return departments.Department{}, ErrNotFound
	}
	return row.toEntity(), nil
}

func (r *DepartmentsRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &departmentModel{}, id)
}

func (r *DepartmentsRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return claimOwner(ctx, r.db, &departmentModel{}, id, adminID)
}
