// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbwise/fangmatch/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Newf
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"formula not found", errors.ErrCodeFormulaNotFound, "formula 麻黄汤 not found"},
		{"bad request", errors.ErrCodeBadRequest, "text must not be empty"},
		{"identify failed", errors.ErrCodeIdentifyFailed, "identification backend unreachable"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeFormulaNotFound, "formula %q not found", "桂枝汤")
	require.NotNil(t, ae)
	assert.Equal(t, `formula "桂枝汤" not found`, ae.Message)
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test", "stack should point at the caller")
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrap / Wrapf
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "should not matter"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrCodeInternal, "should not %s", "matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeStoreConnection, "failed to reach postgres")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeStoreConnection, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, root), "errors.Is must see through the wrap")
	assert.Same(t, root, wrapped.Unwrap())
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeFormulaNotFound, "not found")
	outer := errors.Wrap(inner, errors.ErrCodeUnknown, "while serving request")

	assert.Equal(t, errors.ErrCodeFormulaNotFound, outer.Code,
		"wrapping with ErrCodeUnknown should keep the inner classification")
}

func TestWrap_ExplicitCodeOverrides(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeFormulaNotFound, "not found")
	outer := errors.Wrap(inner, errors.ErrCodeStoreQuery, "repo layer")

	assert.Equal(t, errors.ErrCodeStoreQuery, outer.Code)
	assert.True(t, errors.IsCode(outer, errors.ErrCodeFormulaNotFound),
		"inner code must stay discoverable through the chain")
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	plain := errors.New(errors.ErrCodeBadRequest, "empty input")
	assert.Equal(t, "[COMMON_002] empty input", plain.Error())

	detailed := plain.WithDetail("field=text")
	assert.Equal(t, "[COMMON_002] empty input: field=text", detailed.Error())
}

func TestError_StackNotInMessage(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInternal, "boom")
	assert.False(t, strings.Contains(ae.Error(), ae.Stack) && ae.Stack != "",
		"stack must not leak into Error() output")
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builders
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetail_ClonesReceiver(t *testing.T) {
	t.Parallel()

	orig := errors.New(errors.ErrCodeNotFound, "missing")
	withDetail := orig.WithDetail("id=abc")

	assert.Empty(t, orig.Detail, "original must stay untouched")
	assert.Equal(t, "id=abc", withDetail.Detail)
	assert.Equal(t, orig.Code, withDetail.Code)
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("y")))
}

func TestWithCause_AttachesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	ae := errors.Internal("write failed").WithCause(cause)

	assert.True(t, stderrors.Is(ae, cause))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_FindsCodeAnywhereInChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeFormulaNotFound, "gone")
	middle := fmt.Errorf("repo: %w", inner)
	outer := errors.Wrap(middle, errors.ErrCodeInternal, "handler")

	assert.True(t, errors.IsCode(outer, errors.ErrCodeFormulaNotFound))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeInternal))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeConflict))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", errors.NotFound("x"), true},
		{"formula not found", errors.New(errors.ErrCodeFormulaNotFound, "x"), true},
		{"wrapped formula not found", fmt.Errorf("ctx: %w", errors.New(errors.ErrCodeFormulaNotFound, "x")), true},
		{"conflict", errors.Conflict("x"), false},
		{"plain error", stderrors.New("x"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeTimeout, errors.GetCode(errors.Timeout("slow")))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(stderrors.New("opaque")))

	wrapped := fmt.Errorf("outer: %w", errors.InvalidParam("bad"))
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(wrapped))
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories
// ─────────────────────────────────────────────────────────────────────────────

func TestConvenienceFactories(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *errors.AppError
		code errors.ErrorCode
	}{
		{"NotFound", errors.NotFound("m"), errors.ErrCodeNotFound},
		{"InvalidParam", errors.InvalidParam("m"), errors.ErrCodeBadRequest},
		{"Internal", errors.Internal("m"), errors.ErrCodeInternal},
		{"Conflict", errors.Conflict("m"), errors.ErrCodeConflict},
		{"Unavailable", errors.Unavailable("m"), errors.ErrCodeServiceUnavailable},
		{"Timeout", errors.Timeout("m"), errors.ErrCodeTimeout},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, "m", tc.err.Message)
		})
	}
}
