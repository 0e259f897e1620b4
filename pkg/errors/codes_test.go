package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brailleforge/brailleforge/pkg/errors"
)

func TestHTTPStatusForCode_KnownCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   errors.ErrorCode
		status int
	}{
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{errors.ErrCodeBadRequest, http.StatusBadRequest},
		{errors.ErrCodeGeometryParamInvalid, http.StatusBadRequest},
		{errors.ErrCodeGeometryParamRange, http.StatusBadRequest},
		{errors.ErrCodeGeometryGridOversized, http.StatusBadRequest},
		{errors.ErrCodeGridCapacityExceeded, http.StatusUnprocessableEntity},
		{errors.ErrCodeGridRowsExceeded, http.StatusUnprocessableEntity},
		{errors.ErrCodeGridInputInvalid, http.StatusBadRequest},
		{errors.ErrCodeMeshBuildFailed, http.StatusInternalServerError},
		{errors.ErrCodeAssemblyAllEnginesFailed, http.StatusInternalServerError},
		{errors.ErrCodeExportEncodeFailed, http.StatusInternalServerError},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, errors.HTTPStatusForCode(tc.code), "code %s", tc.code)
	}
}

func TestHTTPStatusForCode_UnknownDefaultsTo500(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusForCode("NOPE_999"))
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "grid capacity exceeded", errors.DefaultMessageForCode(errors.ErrCodeGridCapacityExceeded))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode("NOPE_999"))
}

func TestIsClientAndServerError(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsClientError(errors.ErrCodeGeometryParamRange))
	assert.False(t, errors.IsServerError(errors.ErrCodeGeometryParamRange))

	assert.True(t, errors.IsServerError(errors.ErrCodeAssemblyEngineFailed))
	assert.False(t, errors.IsClientError(errors.ErrCodeAssemblyEngineFailed))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   errors.ErrorCode
		module string
	}{
		{errors.ErrCodeGeometryParamInvalid, "GEO"},
		{errors.ErrCodeGridCapacityExceeded, "GRID"},
		{errors.ErrCodeMeshBuildFailed, "MESH"},
		{errors.ErrCodeAssemblyTimeout, "ASM"},
		{errors.ErrCodeExportEmptyMesh, "EXP"},
		{errors.ErrCodeInternal, "COMMON"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.module, errors.ModuleForCode(tc.code))
	}
}

func TestEveryMappedCodeHasAMessage(t *testing.T) {
	t.Parallel()

	for code := range errors.ErrorCodeHTTPStatus {
		assert.NotEmpty(t, errors.ErrorCodeMessage[code], "code %s has a status but no default message", code)
	}
}
