package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// CustomerInput holds the editable fields of a customer
type CustomerInput struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone"`
}

func (in CustomerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "customer name is required")
	}
	return nil
}

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, actor session.Actor, in CustomerInput) (*models.Customer, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	customer := models.Customer{
		UserID:        actor.ID,
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: trimmedOrNil(in.ContactPerson),
		Email:         trimmedOrNil(in.Email),
		Phone:         trimmedOrNil(in.Phone),
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, persistence("create customer", err)
	}
	return &customer, nil
}

// ListCustomers returns the actor's customers by name, optionally filtered by
// a case-insensitive name substring
func (s *CustomerService) ListCustomers(ctx context.Context, actor session.Actor, search string) ([]models.Customer, error) {
	return listOwned[models.Customer](ctx, s.db, actor, search, "list customers")
}

func (s *CustomerService) GetCustomer(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Customer, error) {
	return getOwned[models.Customer](ctx, s.db, actor, id, "get customer")
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, actor session.Actor, id uuid.UUID, in CustomerInput) (*models.Customer, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	return updateOwned[models.Customer](ctx, s.db, actor, id, map[string]interface{}{
		"name":           strings.TrimSpace(in.Name),
		"contact_person": trimmedOrNil(in.ContactPerson),
		"email":          trimmedOrNil(in.Email),
		"phone":          trimmedOrNil(in.Phone),
	}, "update customer")
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	return deleteOwned[models.Customer](ctx, s.db, actor, id, "delete customer")
}
