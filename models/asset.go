package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset represents a piece of equipment that receives maintenance
type Asset struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string     `gorm:"not null;index" json:"user_id"`
	Name               string     `gorm:"not null" json:"name"`
	Description        *string    `json:"description"`
	SerialNumber       *string    `json:"serial_number"`
	PurchaseDate       *time.Time `json:"purchase_date"`
	WarrantyExpiryDate *time.Time `json:"warranty_expiry_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
