package postgres

import (
	"context"
	"time"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/domain/leaves"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeavesRepo struct {
	db *gorm.DB
}

func NewLeavesRepo(db *gorm.DB) *LeavesRepo {
	return &LeavesRepo{db: db}
}

var _ leaves.Repository = (*LeavesRepo)(nil)

func (r *LeavesRepo) Create(ctx context.Context, l leaves.LeaveRequest) (leaves.LeaveRequest, error) {
	row := leaveModelFrom(l)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return leaves.LeaveRequest{}, err
	}
	return row.toEntity(), nil
}

func (r *LeavesRepo) GetByID(ctx context.Context, id int64) (leaves.LeaveRequest, error) {
	var row leaveModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if notFound(err) {
			return leaves.LeaveRequest{}, ErrNotFound
		}
		return leaves.LeaveRequest{}, err
	}
	return row.toEntity(), nil
}

func (r *LeavesRepo) List(ctx context.Context, owner string) ([]leaves.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx).Scopes(ownerScope(owner)).Order("id ASC"))
}

func (r *LeavesRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]leaves.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx).Where("employee_id = ?", employeeID).Order("id ASC"))
}

func (r *LeavesRepo) ListPending(ctx context.Context, createdBefore time.Time) ([]leaves.LeaveRequest, error) {
	return r.find(r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(leaves.StatusPending), createdBefore).
		Order("created_at ASC, id ASC"))
}

func (r *LeavesRepo) ListApprovedCovering(ctx context.Context, day time.Time) ([]leaves.LeaveRequest, error) {
	d := day.UTC().Format(time.DateOnly)
	return r.find(r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ?::date AND end_date >= ?::date", string(leaves.StatusApproved), d, d).
		Order("id ASC"))
}

func (r *LeavesRepo) find(tx *gorm.DB) ([]leaves.LeaveRequest, error) {
	var rows []leaveModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]leaves.LeaveRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// Update no toca status ni decisión: eso pasa por Decide.
func (r *LeavesRepo) Update(ctx context.Context, l leaves.LeaveRequest) (leaves.LeaveRequest, error) {
	row := leaveModelFrom(l)
	res := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("status = ?", string(leaves.StatusPending)).
		Select("start_date", "end_date", "reason", "updated_at").
		Updates(row)
	if res.Error != nil {
		return leaves.LeaveRequest{}, res.Error
	}
	if res.RowsAffected == 0 {
		// No existe o ya se decidió.
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return leaves.LeaveRequest{}, err
		}
		return leaves.LeaveRequest{}, apperr.Conflict("leave request already decided")
	}
	return row.toEntity(), nil
}

func (r *LeavesRepo) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &leaveModel{}, id)
}

func (r *LeavesRepo) ClaimOwner(ctx context.Context, id int64, adminID string) (string, error) {
	return claimOwner(ctx, r.db, &leaveModel{}, id, adminID)
}

func (r *LeavesRepo) Decide(ctx context.Context, id int64, to leaves.Status, decidedBy string, at time.Time) (leaves.LeaveRequest, bool, error) {
	var rows []leaveModel
	res := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ?", id, string(leaves.StatusPending)).
		Updates(map[string]any{
			"status":     string(to),
			"decided_by": decidedBy,
			"decided_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return leaves.LeaveRequest{}, false, res.Error
	}
	if res.RowsAffected > 0 && len(rows) > 0 {
		return rows[0].toEntity(), true, nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return leaves.LeaveRequest{}, false, err
	}
	return current, false, nil
}
