package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// DefaultRecentOrders is the number of orders shown in the dashboard's recent list
const DefaultRecentOrders = 5

// OrderFilter narrows an order listing. Zero values mean no filtering.
type OrderFilter struct {
	Status     *models.OrderStatus
	SearchTerm string
}

// OrderUpdate carries the header fields an order update may change
type OrderUpdate struct {
	Status       *models.OrderStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// OrderGateway persists orders and their lines on behalf of an actor
type OrderGateway interface {
	CreateOrder(ctx context.Context, actor session.Actor, header models.Order, items []models.OrderItem) (*models.Order, error)
	GetOrders(ctx context.Context, actor session.Actor, filter OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, actor session.Actor, id uuid.UUID, update OrderUpdate) (*models.Order, error)
	ReplaceOrderItems(ctx context.Context, actor session.Actor, id uuid.UUID, items []models.OrderItem) (*models.Order, error)
	DeleteOrder(ctx context.Context, actor session.Actor, id uuid.UUID) error
	CountByStatus(ctx context.Context, actor session.Actor, status models.OrderStatus) (int64, error)
	RecentOrders(ctx context.Context, actor session.Actor, limit int) ([]models.Order, error)
}

// GormOrderGateway is the database-backed OrderGateway
type GormOrderGateway struct {
	db *gorm.DB
}

func NewGormOrderGateway(db *gorm.DB) *GormOrderGateway {
	return &GormOrderGateway{db: db}
}

// ownedBy restricts a query to rows belonging to the actor
func ownedBy(actor session.Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", actor.ID)
	}
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Items.Product")
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// orderNumberAttempts bounds how often CreateOrder retries after losing the
// per-user order number to a concurrent insert
const orderNumberAttempts = 3

// retryOnDuplicate reruns fn while it fails on a unique constraint
func retryOnDuplicate(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !isDuplicateKey(err) {
			return err
		}
	}
	return err
}

// CreateOrder writes the header, then the lines referencing its generated id.
// Both writes share one transaction. A clash on (user_id, order_number) with a
// concurrent insert reruns the transaction with a fresh MAX+1.
func (g *GormOrderGateway) CreateOrder(ctx context.Context, actor session.Actor, header models.Order, items []models.OrderItem) (*models.Order, error) {
	if actor.IsZero() {
		return nil, session.ErrNoActor
	}

	var orderID uuid.UUID
	err := retryOnDuplicate(orderNumberAttempts, func() error {
		return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return g.insertOrder(tx, actor, &header, items, &orderID)
		})
	})
	if err != nil {
		return nil, persistence("create order", err)
	}

	return g.GetOrder(ctx, actor, orderID)
}

func (g *GormOrderGateway) insertOrder(tx *gorm.DB, actor session.Actor, header *models.Order, items []models.OrderItem, orderID *uuid.UUID) error {
	var last int64
	if err := tx.Model(&models.Order{}).Scopes(ownedBy(actor)).
		Select("COALESCE(MAX(order_number), 0)").Scan(&last).Error; err != nil {
		return err
	}

	header.ID = uuid.Nil
	header.UserID = actor.ID
	header.OrderNumber = last + 1
	header.Items = nil
	if err := tx.Omit(clause.Associations).Create(header).Error; err != nil {
		return err
	}
	*orderID = header.ID

	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].OrderID = header.ID
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

// GetOrders lists the actor's orders newest first, joined with customer and line products
func (g *GormOrderGateway) GetOrders(ctx context.Context, actor session.Actor, filter OrderFilter) ([]models.Order, error) {
	query := g.db.WithContext(ctx).Scopes(ownedBy(actor), withOrderDetails)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		query = query.Where(
			"customer_id IN (?)",
			g.db.WithContext(ctx).Model(&models.Customer{}).Select("id").
				Where("user_id = ? AND LOWER(name) LIKE ?", actor.ID, likePattern(term)),
		)
	}

	var orders []models.Order
	if err := query.Order("order_date DESC").Order("order_number DESC").Find(&orders).Error; err != nil {
		return nil, persistence("list orders", err)
	}
	return orders, nil
}

func (g *GormOrderGateway) GetOrder(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := g.db.WithContext(ctx).Scopes(ownedBy(actor), withOrderDetails).
		Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, persistence("get order", err)
	}
	return &order, nil
}

// UpdateOrder changes header fields only. The stored total is recomputed from
// the persisted lines on every write.
func (g *GormOrderGateway) UpdateOrder(ctx context.Context, actor session.Actor, id uuid.UUID, update OrderUpdate) (*models.Order, error) {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Scopes(ownedBy(actor)).Where("id = ?", id).First(&order).Error; err != nil {
			return err
		}

		total, err := persistedTotal(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{"total_amount": total}
		if update.Status != nil {
			changes["status"] = *update.Status
		}
		if update.ClearDueDate {
			changes["due_date"] = nil
		} else if update.DueDate != nil {
			changes["due_date"] = *update.DueDate
		}
		return tx.Model(&order).Updates(changes).Error
	})
	if err != nil {
		return nil, persistence("update order", err)
	}

	return g.GetOrder(ctx, actor, id)
}

// ReplaceOrderItems swaps the order's lines for a new set and rewrites its total
func (g *GormOrderGateway) ReplaceOrderItems(ctx context.Context, actor session.Actor, id uuid.UUID, items []models.OrderItem) (*models.Order, error) {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Scopes(ownedBy(actor)).Where("id = ?", id).First(&order).Error; err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		total := decimal.Zero
		for i := range items {
			items[i].ID = uuid.Nil
			items[i].OrderID = id
			total = total.Add(items[i].LineTotal())
		}
		if len(items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return err
			}
		}

		return tx.Model(&order).Update("total_amount", total).Error
	})
	if err != nil {
		return nil, persistence("replace order items", err)
	}

	return g.GetOrder(ctx, actor, id)
}

// DeleteOrder removes the order's lines and then its header
func (g *GormOrderGateway) DeleteOrder(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Scopes(ownedBy(actor)).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Scopes(ownedBy(actor)).Where("id = ?", id).Delete(&models.Order{}).Error
	})
	return persistence("delete order", err)
}

func (g *GormOrderGateway) CountByStatus(ctx context.Context, actor session.Actor, status models.OrderStatus) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Order{}).Scopes(ownedBy(actor)).
		Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, persistence("count orders", err)
	}
	return count, nil
}

// RecentOrders returns the actor's latest orders by order date, with the same
// customer and line detail as GetOrders
func (g *GormOrderGateway) RecentOrders(ctx context.Context, actor session.Actor, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = DefaultRecentOrders
	}

	var orders []models.Order
	err := g.db.WithContext(ctx).Scopes(ownedBy(actor), withOrderDetails).
		Order("order_date DESC").Order("order_number DESC").Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, persistence("recent orders", err)
	}
	return orders, nil
}

func persistedTotal(tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error) {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total, nil
}
