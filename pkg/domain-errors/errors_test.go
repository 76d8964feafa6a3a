package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeStore, "failed to insert requirement")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to insert requirement: connection reset", err.Error())
	assert.True(t, HasCode(err, CodeStore))
	assert.False(t, HasCode(err, CodeValidation))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeStore, "unused"))
}

func TestHasCodeFindsInnerCode(t *testing.T) {
	inner := New(CodeNotFound, "framework not found")
	outer := Wrap(fmt.Errorf("lookup: %w", inner), CodeStore, "sync failed")

	assert.True(t, HasCode(outer, CodeStore))
	assert.True(t, HasCode(outer, CodeNotFound))
	assert.Equal(t, CodeStore, CodeOf(outer))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.False(t, HasCode(errors.New("boom"), CodeInternal))
}
