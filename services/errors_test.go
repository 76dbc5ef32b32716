package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPersistenceError(t *testing.T) {
	assert.NoError(t, persistence("noop", nil))

	err := persistence("get order", gorm.ErrRecordNotFound)
	assert.EqualError(t, err, "get order: record not found")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(persistence("create", gorm.ErrDuplicatedKey)))
	assert.True(t, IsConflict(persistence("delete", gorm.ErrForeignKeyViolated)))
	assert.True(t, IsConflict(errors.New(`ERROR: duplicate key value violates unique constraint "idx_customers_user_name"`)))
	assert.True(t, IsConflict(errors.New("UNIQUE constraint failed: customers.user_id, customers.name")))
	assert.False(t, IsConflict(nil))
	assert.False(t, IsConflict(errors.New("connection refused")))
}

func TestPartialFailureError(t *testing.T) {
	id := uuid.New()
	cause := fmt.Errorf("wrapped: %w", gorm.ErrRecordNotFound)
	err := &PartialFailureError{
		Op:        "batch update status",
		Failures:  []OperationFailure{{ID: id, Op: "update", Err: cause}},
		Succeeded: 2,
	}

	assert.Contains(t, err.Error(), "1 of 3 operations failed")
	assert.Contains(t, err.Error(), id.String())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestValidationError(t *testing.T) {
	assert.EqualError(t, invalid("quantity", "must be at least %d", 1), "quantity: must be at least 1")
	assert.EqualError(t, &ValidationError{Message: "bad"}, "bad")
}
