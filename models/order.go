package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order represents a customer order header. TotalAmount always equals the
// sum of its items' quantity x unit price.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string          `gorm:"not null;uniqueIndex:idx_orders_user_number,priority:1" json:"user_id"`
	OrderNumber int64           `gorm:"not null;uniqueIndex:idx_orders_user_number,priority:2" json:"order_number"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer    Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	OrderDate   time.Time       `gorm:"not null;index" json:"order_date"`
	DueDate     *time.Time      `json:"due_date"`
	Status      OrderStatus     `gorm:"type:varchar(32);not null;default:'Pending';index" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem is one line of an order. UnitPrice is captured when the line is
// written and is independent of later product price changes.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// LineTotal returns quantity x unit price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
