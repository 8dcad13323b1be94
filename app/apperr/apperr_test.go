package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := NotFound("get profile", "user %s not found", "u1")
	wrapped := fmt.Errorf("discover: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindForbidden))
	assert.Equal(t, "discover: get profile: user u1 not found", wrapped.Error())
}

func TestUnknownKind(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindNotFound))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := New(KindConflict, "insert", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insert: disk full", err.Error())
	assert.Equal(t, "insert: conflict", New(KindConflict, "insert", nil).Error())
}
