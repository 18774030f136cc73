package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCodeAndOverridesMessage(t *testing.T) {
	err := Clone(ErrNotFound, "course CS101 not found")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "course CS101 not found", err.Error())
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapKeepsCauseReachable(t *testing.T) {
	cause := fmt.Errorf("list marks: %w", sql.ErrConnDone)
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load marks")

	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Contains(t, err.Error(), "failed to load marks: list marks")
	assert.True(t, Is(err, ErrInternal))
	assert.False(t, Is(err, ErrNotFound))
}

func TestIsMatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("resolve: %w", Clone(ErrInvalidInput, "mark exceeds max marks"))

	assert.True(t, Is(err, ErrInvalidInput))
	assert.False(t, Is(nil, ErrInvalidInput))
	assert.False(t, Is(errors.New("plain"), ErrInvalidInput))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrValidation, "bad thresholds")
	assert.Same(t, typed, FromError(fmt.Errorf("wrap: %w", typed)))

	plain := FromError(errors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}
