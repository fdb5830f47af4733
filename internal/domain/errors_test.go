package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHelpers(t *testing.T) {
	cause := errors.New("boom")

	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NotFoundError{Resource: "flight", ID: "AI1001"})))
	assert.True(t, IsValidation(ValidationError{Field: "passenger_name"}))
	assert.True(t, IsInsufficientFunds(fmt.Errorf("debit: %w", InsufficientFundsError{Balance: 100, Required: 250})))
	assert.True(t, IsConflict(ConflictError{Resource: "booking", Field: "pnr"}))
	assert.True(t, IsDependency(DependencyError{Dependency: "storage", Err: cause}))
	assert.False(t, IsNotFound(cause))

	assert.ErrorIs(t, DependencyError{Dependency: "storage", Err: cause}, cause)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "flight AI1001 not found", NotFoundError{Resource: "flight", ID: "AI1001"}.Error())
	assert.Equal(t, "booking not found", NotFoundError{Resource: "booking"}.Error())
	assert.Equal(t, "invalid passenger_name", ValidationError{Field: "passenger_name"}.Error())
	assert.Equal(t, "booking conflict on pnr", ConflictError{Resource: "booking", Field: "pnr"}.Error())
	assert.Equal(t, "ticket renderer unavailable", DependencyError{Dependency: "ticket renderer"}.Error())

	insufficient := InsufficientFundsError{Balance: 1000, Required: 2750}
	assert.Equal(t, "insufficient wallet balance: current 1000, required 2750", insufficient.Error())
	assert.Equal(t, int64(1750), insufficient.Shortfall())
}
