package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateIdentifier(t *testing.T) {
	err := DuplicateIdentifier()
	assert.Equal(t, ErrCodeDuplicateIdentifier, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "Email or username is already used", err.Message)
}

func TestIncompleteData(t *testing.T) {
	err := IncompleteData()
	assert.Equal(t, ErrCodeIncompleteData, err.Code)
	assert.Equal(t, "Not enough data is filled", err.Message)
}

func TestForbiddenCarriesNoDetail(t *testing.T) {
	err := Forbidden()
	assert.Equal(t, http.StatusForbidden, err.HTTPStatus)
	assert.Empty(t, err.Message)
}

func TestInternalHidesCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Internal(cause)
	assert.NotContains(t, err.ToResponse().Error, "pq:")
	assert.ErrorIs(t, err, cause)
}

func TestAsAppError(t *testing.T) {
	var err error = NoSuchUser()
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, appErr.Code)

	wrapped := fmt.Errorf("handler: %w", err)
	appErr, ok = AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, appErr.Code)

	_, ok = AsAppError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(DuplicateIdentifier(), ErrCodeDuplicateIdentifier))
	assert.False(t, IsCode(NoSuchUser(), ErrCodeDuplicateIdentifier))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
}
