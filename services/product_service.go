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

// ProductInput holds the editable fields of a product
type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "product name is required")
	}
	if !in.Price.IsPositive() {
		return invalid("price", "price must be greater than zero")
	}
	return nil
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(ctx context.Context, actor session.Actor, in ProductInput) (*models.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := models.Product{
		UserID:      actor.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: trimmedOrNil(in.Description),
		Price:       in.Price,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, persistence("create product", err)
	}
	return &product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, actor session.Actor, search string) ([]models.Product, error) {
	return listOwned[models.Product](ctx, s.db, actor, search, "list products")
}

func (s *ProductService) GetProduct(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Product, error) {
	return getOwned[models.Product](ctx, s.db, actor, id, "get product")
}

func (s *ProductService) UpdateProduct(ctx context.Context, actor session.Actor, id uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	return updateOwned[models.Product](ctx, s.db, actor, id, map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": trimmedOrNil(in.Description),
		"price":       in.Price,
	}, "update product")
}

func (s *ProductService) DeleteProduct(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	return deleteOwned[models.Product](ctx, s.db, actor, id, "delete product")
}

// PriceList snapshots the current prices of the given products owned by the actor
func (s *ProductService) PriceList(ctx context.Context, actor session.Actor, ids []uuid.UUID) (PriceList, error) {
	if len(ids) == 0 {
		return PriceList{}, nil
	}

	var products []models.Product
	err := s.db.WithContext(ctx).Scopes(ownedBy(actor)).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, persistence("load product prices", err)
	}
	return NewPriceList(products), nil
}
