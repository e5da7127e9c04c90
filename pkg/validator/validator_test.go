package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priced struct {
	ID    uuid.UUID       `validate:"uuid_required"`
	Price decimal.Decimal `validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	ok := priced{ID: uuid.New(), Price: decimal.RequireFromString("12.5")}
	assert.Empty(t, ValidateStruct(&ok))
	assert.NoError(t, Validate(&ok))

	bad := priced{Price: decimal.RequireFromString("-1")}
	errs := ValidateStruct(&bad)
	require.Len(t, errs, 2)
	assert.Equal(t, "priced.ID", errs[0].FailedField)
	assert.Equal(t, "uuid_required", errs[0].Tag)
	assert.Equal(t, "gte", errs[1].Tag)

	err := Validate(&bad)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "validation failed: field 'priced.ID' failed on tag 'uuid_required'")
}
