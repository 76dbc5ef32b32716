package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/session"
)

// Shared helpers for the per-actor catalog tables (customers, products, raw
// materials, assets). Every query is scoped to the actor's rows.

func requireActor(actor session.Actor) error {
	if actor.IsZero() {
		return &ValidationError{Field: "user", Message: session.ErrNoActor.Error()}
	}
	return nil
}

func listOwned[T any](ctx context.Context, db *gorm.DB, actor session.Actor, search, op string) ([]T, error) {
	query := db.WithContext(ctx).Scopes(ownedBy(actor))
	if strings.TrimSpace(search) != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var rows []T
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, persistence(op, err)
	}
	return rows, nil
}

func getOwned[T any](ctx context.Context, db *gorm.DB, actor session.Actor, id uuid.UUID, op string) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Scopes(ownedBy(actor)).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, persistence(op, err)
	}
	return &row, nil
}

func updateOwned[T any](ctx context.Context, db *gorm.DB, actor session.Actor, id uuid.UUID, changes map[string]interface{}, op string) (*T, error) {
	var model T
	result := db.WithContext(ctx).Model(&model).Scopes(ownedBy(actor)).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, persistence(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, persistence(op, gorm.ErrRecordNotFound)
	}
	return getOwned[T](ctx, db, actor, id, op)
}

func deleteOwned[T any](ctx context.Context, db *gorm.DB, actor session.Actor, id uuid.UUID, op string) error {
	var model T
	result := db.WithContext(ctx).Scopes(ownedBy(actor)).Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return persistence(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence(op, gorm.ErrRecordNotFound)
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
