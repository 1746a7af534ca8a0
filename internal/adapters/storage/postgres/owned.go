package postgres

import (
	"context"

	"gorm.io/gorm"
)

// claimOwner asigna owner solo si la fila no tiene; el WHERE hace el compare-and-set.
// Devuelve el owner que quedó (el propio o el del que ganó antes).
func claimOwner(ctx context.Context, db *gorm.DB, model any, id int64, adminID string) (string, error) {
	res := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND owner_admin_id = ''", id).
		Update("owner_admin_id", adminID)
	if res.Error != nil {
		return "", res.Error
	}
	return ownerOf(ctx, db, model, id)
}

func ownerOf(ctx context.Context, db *gorm.DB, model any, id int64) (string, error) {
	var owners []string
	if err := db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Limit(1).
		Pluck("owner_admin_id", &owners).Error; err != nil {
		return "", err
	}
	if len(owners) == 0 {
		return "", ErrNotFound
	}
	return owners[0], nil
}

// ownerScope filtra por owner sin distinguir mayúsculas; "" = todos.
func ownerScope(owner string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if owner == "" {
			return tx
		}
		return tx.Where("lower(owner_admin_id) = lower(?)", owner)
	}
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id int64) error {
	res := db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
