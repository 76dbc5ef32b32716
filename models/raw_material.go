package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultUnitOfMeasure is used when a raw material is created without a unit
const DefaultUnitOfMeasure = "units"

// RawMaterial represents a stocked input material
type RawMaterial struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string          `gorm:"not null;index" json:"user_id"`
	Name             string          `gorm:"not null" json:"name"`
	CurrentStock     decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"current_stock"`
	ReorderThreshold decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"reorder_threshold"`
	UnitOfMeasure    string          `gorm:"not null;default:'units'" json:"unit_of_measure"`
	LowStock         bool            `gorm:"-" json:"is_low_stock"` // computed on read, never stored
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the RawMaterial model
func (RawMaterial) TableName() string {
	return "raw_materials"
}

// IsLowStock reports whether the material is at or below its reorder threshold
func (m RawMaterial) IsLowStock() bool {
	return m.CurrentStock.LessThanOrEqual(m.ReorderThreshold)
}

func (m *RawMaterial) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	if m.UnitOfMeasure == "" {
		m.UnitOfMeasure = DefaultUnitOfMeasure
	}
	return nil
}

func (m *RawMaterial) AfterFind(tx *gorm.DB) error {
	m.LowStock = m.IsLowStock()
	return nil
}

func (m *RawMaterial) AfterSave(tx *gorm.DB) error {
	m.LowStock = m.IsLowStock()
	return nil
}
