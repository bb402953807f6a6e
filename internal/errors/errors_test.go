package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuffleraid/raid-api/internal/errors"
)

func TestError_Error(t *testing.T) {
	err := errors.NotFound("session RAID1 not found")
	assert.Equal(t, "NOT_FOUND: session RAID1 not found", err.Error())

	wrapped := errors.Wrap(fmt.Errorf("dial tcp: refused"), "redis unavailable")
	assert.Contains(t, wrapped.Error(), "INTERNAL: redis unavailable")
	assert.Contains(t, wrapped.Error(), "dial tcp")
}

func TestWrap_PreservesCode(t *testing.T) {
	inner := errors.Aborted("version moved")
	outer := errors.Wrapf(inner, "failed to apply patch to session %s", "RAID1")

	assert.Equal(t, errors.CodeAborted, errors.GetCode(outer))
	assert.True(t, errors.IsAborted(outer))
	assert.True(t, stderrors.Is(outer, inner))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, "nothing"))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeInternal, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.CodeFailedPrecondition, errors.GetCode(errors.FailedPrecondition("not your turn")))
}

func TestPredicates(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NotFoundf("session %s not found", "X")))
	assert.False(t, errors.IsNotFound(errors.Aborted("conflict")))
	assert.True(t, errors.IsFailedPrecondition(errors.FailedPreconditionf("bad status %s", "lobby")))
}

func TestWithMeta(t *testing.T) {
	err := errors.InvalidArgument("bad input").WithMeta("field", "code")
	assert.Equal(t, "code", err.Meta["field"])
}

func TestValidationBuilder(t *testing.T) {
	t.Run("empty builder builds nil", func(t *testing.T) {
		assert.NoError(t, errors.NewValidationBuilder().Build())
	})

	t.Run("recorded fields build an invalid argument error", func(t *testing.T) {
		err := errors.NewValidationBuilder().
			RequiredField("SessionRepo").
			InvalidField("TTL", "must be positive").
			Build()
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidArgument, errors.GetCode(err))
		assert.Contains(t, err.Error(), "SessionRepo")
		assert.Contains(t, err.Error(), "TTL")
	})
}
