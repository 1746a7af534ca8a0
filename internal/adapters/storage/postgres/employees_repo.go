package postgres

import (
	"context"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/employees"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeesRepo struct {
	db *gorm.DB
}

func NewEmployeesRepo(db *gorm.DB) *EmployeesRepo {
	return &EmployeesRepo{db: db}
}

var _ employees.Repository = (*EmployeesRepo)(nil)

func (r *EmployeesRepo) Create(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	row := employeeModelFrom(e)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return employees.Employee{}, apperr.Conflict("email already registered")
		}
		return employees.Employee{}, err
	}
	return row.toEntity(), nil
}

func (r *EmployeesRepo) GetByID(ctx context.Context, id int64) (employees.Employee, error) {
	var row employeeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if notFound(err) {
			return employees.Employee{}, ErrNotFound
		}
		return employees.Employee{}, err
	}
	return row.toEntity(), nil
}

func (r *EmployeesRepo) List(ctx context.Context, owner string) ([]employees.Employee, error) {
	var rows []employeeModel
	if err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]employees.Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *EmployeesRepo) Update(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	row := employeeModelFrom(e)
	res := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Select("first_name", "last_name", "email", "position", "department_id", "hire_date", "status", "updated_at").
		Updates(row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return employees.Employee{}, apperr.Conflict("email already registered")
		}
		return employees.Employee{}, res.Error
	}
	if res.RowsAffected == 0 {
		return employees.Employee{}, ErrNotFound
	}
	return row.toEntity(), nil
}

func (r *EmployeesRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &employeeModel{}, id)
}

func (r *EmployeesRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return claimOwner(ctx, r.db, &employeeModel{}, id, adminID)
}

func (r *EmployeesRepo) SetStatus(ctx context.Context, id int64, from, to employees.Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&employeeModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": gorm.Expr("now()")})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// Distinguir "no existe" de "otro lo cambió antes".
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
