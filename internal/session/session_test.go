package session

import (
	"context"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestFromContext(t *testing.T) {
	assert.Equal(t, None, FromContext(context.Background()))

	s := Session{UserID: "42", Token: "tok"}
	ctx := NewContext(context.Background(), s)
	assert.Equal(t, s, FromContext(ctx))
	assert.True(t, s.Valid())
	assert.Equal(t, "user", s.Kind())
}

func TestNoneIsInvalid(t *testing.T) {
	assert.False(t, None.Valid())
	assert.Equal(t, "none", None.Kind())
	assert.False(t, Session{UserID: "42"}.Valid())
}
