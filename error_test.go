package courier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, ENOTFOUND, ErrorCode(NotFound("draft not found")))
	assert.Equal(t, EINTERNAL, ErrorCode(errors.New("plain error")))

	wrapped := Internal("query failed", errors.New("connection reset"))
	assert.Equal(t, EINTERNAL, ErrorCode(wrapped))
	assert.Contains(t, wrapped.Error(), "connection reset")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "draft not found", ErrorMessage(NotFound("draft not found")))
	assert.Equal(t, "An internal error occurred.", ErrorMessage(errors.New("db password wrong")))
}

func TestIsErrorCode(t *testing.T) {
	err := Invalid("prompt is required")
	assert.True(t, IsErrorCode(err, EINVALID))
	assert.False(t, IsErrorCode(err, ENOTFOUND))
}
