package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClonePreservesIdentity(t *testing.T) {
	cloned := Clone(ErrStaleRequest, "filter changed")

	assert.Equal(t, "filter changed", cloned.Message)
	assert.True(t, errors.Is(cloned, ErrStaleRequest))
	assert.False(t, errors.Is(cloned, ErrChatBusy))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.EqualError(t, appErr, "internal server error: boom")
}

func TestFromErrorKeepsTyped(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", ErrUpstream)

	assert.Same(t, ErrUpstream, FromError(wrapped))
	assert.Nil(t, FromError(nil))
}
