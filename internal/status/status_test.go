package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindConflict, KindOf(Conflict("raced")))
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindValidation, KindOf(Validationf("price (%d) too high", 120)))
	assert.Equal(t, KindInternal, KindOf(Internal(errors.New("boom"), "failed")))
	assert.Equal(t, KindInternal, KindOf(errors.New("unclassified")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindOf_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("missing"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "missing", MessageOf(NotFound("missing")))
	assert.Equal(t, "failed", MessageOf(Internal(errors.New("boom"), "failed")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("secret detail")))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "failed to load")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed to load")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "internal", KindInternal.String())
}
