package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapsSentinels(t *testing.T) {
	err := fmt.Errorf("saving session: %w", NewConflictError("session s1 already exists"))
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, "saving session: session s1 already exists: resource already exists", err.Error())

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.Code)

	assert.True(t, errors.Is(NewValidationFailedError("bad"), ErrValidation))
	assert.True(t, errors.Is(NewNotFoundError("gone"), ErrNotFound))
	assert.Equal(t, "plain", NewAppError(500, "plain", nil).Error())
}
