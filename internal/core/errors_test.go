package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"lifelessons-backend-go/internal/db"
)

func TestStoreErr(t *testing.T) {
	missing := fmt.Errorf("lesson with ID 'x' not found: %w", db.ErrNotFound)
	err := storeErr(missing, "Lesson not found", "failed to get lesson")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, db.ErrNotFound)
	msg, ok := PublicMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Lesson not found", msg)

	err = storeErr(errStoreDown, "Lesson not found", "failed to get lesson")
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, errors.Is(err, ErrNotFound))
	_, ok = PublicMessage(err)
	assert.False(t, ok)
	assert.Equal(t, "failed to get lesson: store unavailable", err.Error())
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"", ".", "..", "a/b", "__reserved__", string([]byte{0xff})} {
		assert.ErrorIs(t, validateID("lesson", id), ErrInvalidInput, "%q", id)
	}
	for _, id := range []string{"abc", "lesson-0001", "__x", "x__"} {
		assert.NoError(t, validateID("lesson", id), id)
	}
}
