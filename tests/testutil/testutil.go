package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/config"
	"github.com/harekrishna1602/anvesha-2.0/models"
)

// SetTestEnvironment sets GO_ENV to test for the duration of the test
func SetTestEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
}

// NewTestDB opens a migrated in-memory sqlite database. The pool is limited
// to one connection since every new :memory: connection is a fresh database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func SeedCustomer(t *testing.T, db *gorm.DB, userID, name string) models.Customer {
	t.Helper()
	customer := models.Customer{UserID: userID, Name: name}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}
	return customer
}

// SeedProduct creates a product with the given price, e.g. "12.50"
func SeedProduct(t *testing.T, db *gorm.DB, userID, name, price string) models.Product {
	t.Helper()
	product := models.Product{UserID: userID, Name: name, Price: decimal.RequireFromString(price)}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return product
}

func SeedRawMaterial(t *testing.T, db *gorm.DB, userID, name, stock, threshold string) models.RawMaterial {
	t.Helper()
	material := models.RawMaterial{
		UserID:           userID,
		Name:             name,
		CurrentStock:     decimal.RequireFromString(stock),
		ReorderThreshold: decimal.RequireFromString(threshold),
	}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("Failed to seed raw material: %v", err)
	}
	return material
}

func SeedAsset(t *testing.T, db *gorm.DB, userID, name string) models.Asset {
	t.Helper()
	asset := models.Asset{UserID: userID, Name: name}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("Failed to seed asset: %v", err)
	}
	return asset
}
