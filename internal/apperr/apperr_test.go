package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("question_id is required"), KindValidation},
		{"wrapped conflict", fmt.Errorf("register: %w", Conflict("user already exists")), KindConflict},
		{"forbidden", Forbidden("invalid or expired token"), KindForbidden},
		{"plain error", errors.New("boom"), KindPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Persistence("failed to upsert answer", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to upsert answer", Message(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsAuth(t *testing.T) {
	assert.True(t, IsAuth(Unauthorized("no token provided")))
	assert.True(t, IsAuth(Forbidden("invalid or expired token")))
	assert.False(t, IsAuth(NotFound("question not found")))
	assert.Equal(t, "internal error", Message(errors.New("x")))
}
