package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herbwise/fangmatch/pkg/errors"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeBadRequest, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeFormulaNotFound, http.StatusNotFound},
		{errors.ErrCodeFormulaExists, http.StatusConflict},
		{errors.ErrCodeParseNoHerbs, http.StatusUnprocessableEntity},
		{errors.ErrCodeStoreConnection, http.StatusServiceUnavailable},
		{errors.ErrCodeIdentifyFailed, http.StatusBadGateway},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrorCode("NOPE_000"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.code.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.HTTPStatusForCode(tc.code))
		})
	}
}

func TestIsClientServerError(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsClientError(errors.ErrCodeBadRequest))
	assert.False(t, errors.IsServerError(errors.ErrCodeBadRequest))

	assert.True(t, errors.IsServerError(errors.ErrCodeInternal))
	assert.False(t, errors.IsClientError(errors.ErrCodeInternal))

	assert.True(t, errors.IsServerError(errors.ErrorCode("UNMAPPED")), "unmapped codes default to 500")
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "COMMON", errors.ModuleForCode(errors.ErrCodeInternal))
	assert.Equal(t, "FORMULA", errors.ModuleForCode(errors.ErrCodeFormulaNotFound))
	assert.Equal(t, "PARSE", errors.ModuleForCode(errors.ErrCodeParseNoHerbs))
	assert.Equal(t, "STORE", errors.ModuleForCode(errors.ErrCodeStoreQuery))
	assert.Equal(t, "INTEL", errors.ModuleForCode(errors.ErrCodeAnalysisFailed))
	assert.Equal(t, "OK", errors.ModuleForCode(errors.CodeOK), "codes without underscore return themselves")
}
