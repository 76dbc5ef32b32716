package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// RawMaterialInput holds the editable fields of a raw material
type RawMaterialInput struct {
	Name             string          `json:"name" binding:"required"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	UnitOfMeasure    string          `json:"unit_of_measure"`
}

func (in RawMaterialInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "material name is required")
	}
	if in.CurrentStock.IsNegative() {
		return invalid("current_stock", "current stock cannot be negative")
	}
	if in.ReorderThreshold.IsNegative() {
		return invalid("reorder_threshold", "reorder threshold cannot be negative")
	}
	return nil
}

func (in RawMaterialInput) unit() string {
	if u := strings.TrimSpace(in.UnitOfMeasure); u != "" {
		return u
	}
	return models.DefaultUnitOfMeasure
}

// RawMaterialFilter narrows a raw material listing
type RawMaterialFilter struct {
	Search       string
	LowStockOnly bool
}

type RawMaterialService struct {
	db *gorm.DB
}

func NewRawMaterialService(db *gorm.DB) *RawMaterialService {
	return &RawMaterialService{db: db}
}

func (s *RawMaterialService) CreateRawMaterial(ctx context.Context, actor session.Actor, in RawMaterialInput) (*models.RawMaterial, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	material := models.RawMaterial{
		UserID:           actor.ID,
		Name:             strings.TrimSpace(in.Name),
		CurrentStock:     in.CurrentStock,
		ReorderThreshold: in.ReorderThreshold,
		UnitOfMeasure:    in.unit(),
	}
	if err := s.db.WithContext(ctx).Create(&material).Error; err != nil {
		return nil, persistence("create raw material", err)
	}
	return &material, nil
}

// ListRawMaterials returns the actor's materials. Low stock is a derived
// predicate, so the low-stock filter is applied after loading.
func (s *RawMaterialService) ListRawMaterials(ctx context.Context, actor session.Actor, filter RawMaterialFilter) ([]models.RawMaterial, error) {
	materials, err := listOwned[models.RawMaterial](ctx, s.db, actor, filter.Search, "list raw materials")
	if err != nil || !filter.LowStockOnly {
		return materials, err
	}

	low := make([]models.RawMaterial, 0, len(materials))
	for _, m := range materials {
		if m.IsLowStock() {
			low = append(low, m)
		}
	}
	return low, nil
}

func (s *RawMaterialService) GetRawMaterial(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.RawMaterial, error) {
	return getOwned[models.RawMaterial](ctx, s.db, actor, id, "get raw material")
}

func (s *RawMaterialService) UpdateRawMaterial(ctx context.Context, actor session.Actor, id uuid.UUID, in RawMaterialInput) (*models.RawMaterial, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	return updateOwned[models.RawMaterial](ctx, s.db, actor, id, map[string]interface{}{
		"name":              strings.TrimSpace(in.Name),
		"current_stock":     in.CurrentStock,
		"reorder_threshold": in.ReorderThreshold,
		"unit_of_measure":   in.unit(),
	}, "update raw material")
}

func (s *RawMaterialService) DeleteRawMaterial(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	return deleteOwned[models.RawMaterial](ctx, s.db, actor, id, "delete raw material")
}

// LowStockCount counts the actor's materials at or below their reorder threshold
func (s *RawMaterialService) LowStockCount(ctx context.Context, actor session.Actor) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RawMaterial{}).Scopes(ownedBy(actor)).
		Where("current_stock <= reorder_threshold").Count(&count).Error
	if err != nil {
		return 0, persistence("count low stock materials", err)
	}
	return count, nil
}
