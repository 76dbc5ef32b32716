package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// AssetInput holds the editable fields of an asset
type AssetInput struct {
	Name               string     `json:"name"`
	Description        *string    `json:"description"`
	SerialNumber       *string    `json:"serial_number"`
	PurchaseDate       *time.Time `json:"purchase_date"`
	WarrantyExpiryDate *time.Time `json:"warranty_expiry_date"`
}

func (in AssetInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "asset name is required")
	}
	if in.PurchaseDate != nil && in.WarrantyExpiryDate != nil && in.WarrantyExpiryDate.Before(*in.PurchaseDate) {
		return invalid("warranty_expiry_date", "warranty cannot expire before the purchase date")
	}
	return nil
}

type AssetService struct {
	db *gorm.DB
}

func NewAssetService(db *gorm.DB) *AssetService {
	return &AssetService{db: db}
}

func (s *AssetService) CreateAsset(ctx context.Context, actor session.Actor, in AssetInput) (*models.Asset, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	asset := models.Asset{
		UserID:             actor.ID,
		Name:               strings.TrimSpace(in.Name),
		Description:        trimmedOrNil(in.Description),
		SerialNumber:       trimmedOrNil(in.SerialNumber),
		PurchaseDate:       in.PurchaseDate,
		WarrantyExpiryDate: in.WarrantyExpiryDate,
	}
	if err := s.db.WithContext(ctx).Create(&asset).Error; err != nil {
		return nil, persistence("create asset", err)
	}
	return &asset, nil
}

func (s *AssetService) ListAssets(ctx context.Context, actor session.Actor, search string) ([]models.Asset, error) {
	return listOwned[models.Asset](ctx, s.db, actor, search, "list assets")
}

func (s *AssetService) GetAsset(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Asset, error) {
	return getOwned[models.Asset](ctx, s.db, actor, id, "get asset")
}

func (s *AssetService) UpdateAsset(ctx context.Context, actor session.Actor, id uuid.UUID, in AssetInput) (*models.Asset, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	return updateOwned[models.Asset](ctx, s.db, actor, id, map[string]interface{}{
		"name":                 strings.TrimSpace(in.Name),
		"description":          trimmedOrNil(in.Description),
		"serial_number":        trimmedOrNil(in.SerialNumber),
		"purchase_date":        in.PurchaseDate,
		"warranty_expiry_date": in.WarrantyExpiryDate,
	}, "update asset")
}

func (s *AssetService) DeleteAsset(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	return deleteOwned[models.Asset](ctx, s.db, actor, id, "delete asset")
}
