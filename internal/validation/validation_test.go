package validation

import (
	"errors"
	"testing"

	"github.com/deppfellow/estate-storage/internal/errs"
	"github.com/deppfellow/estate-storage/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity_Valid(t *testing.T) {
	assert.NoError(t, Entity(&model.User{Name: "user1"}))
	assert.NoError(t, Entity(&model.User{Email: "user1@example.com"}))
	assert.NoError(t, Entity(&model.Property{Price: 100}))
	assert.NoError(t, Entity(&model.Review{}))
	assert.NoError(t, Entity(&model.Review{Rating: 5}))
}

func TestEntity_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		entity model.Entity
		field  string
		msg    string
	}{
		{"bad email", &model.User{Email: "not-an-email"}, "email", "must be a valid email address"},
		{"negative price", &model.Property{Price: -1}, "price", "must be greater than or equal to 0"},
		{"rating too high", &model.Review{Rating: 6}, "rating", "must not exceed 5"},
		{"negative amount", &model.Transaction{Amount: -10}, "amount", "must be greater than or equal to 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Entity(tt.entity)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidEntity))

			var storeErr *errs.Error
			require.True(t, errors.As(err, &storeErr))
			require.Len(t, storeErr.Errors, 1)
			assert.Equal(t, tt.field, storeErr.Errors[0].Field)
			assert.Equal(t, tt.msg, storeErr.Errors[0].Error)
		})
	}
}
