package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceTask represents scheduled work on an asset
type MaintenanceTask struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string            `gorm:"not null;index" json:"user_id"`
	AssetID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"asset_id"`
	Asset          Asset             `gorm:"foreignKey:AssetID" json:"asset"`
	Title          string            `gorm:"not null" json:"title"`
	Description    *string           `json:"description"`
	ScheduledDate  time.Time         `gorm:"not null;index" json:"scheduled_date"`
	AssignedTo     *string           `json:"assigned_to"`
	Status         MaintenanceStatus `gorm:"type:varchar(32);not null;default:'Scheduled'" json:"status"`
	ChecklistItems []ChecklistItem   `gorm:"foreignKey:TaskID" json:"checklist_items"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the MaintenanceTask model
func (MaintenanceTask) TableName() string {
	return "maintenance_tasks"
}

func (t *MaintenanceTask) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// ChecklistItem is a single step of a maintenance task
type ChecklistItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	Description string    `gorm:"not null" json:"description"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the ChecklistItem model
func (ChecklistItem) TableName() string {
	return "maintenance_checklist_items"
}

func (i *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
