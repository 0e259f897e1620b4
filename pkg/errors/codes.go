package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeValidation         ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeNotImplemented     ErrorCode = "COMMON_008"
	ErrCodeRateLimited        ErrorCode = "COMMON_009"
)

// Geometry parameter resolution error codes
const (
	ErrCodeGeometryParamInvalid  ErrorCode = "GEO_001"
	ErrCodeGeometryParamRange    ErrorCode = "GEO_002"
	ErrCodeGeometryParamUnknown  ErrorCode = "GEO_003"
	ErrCodeGeometryGridOversized ErrorCode = "GEO_004"
	ErrCodeGeometryShapeInvalid  ErrorCode = "GEO_005"
)

// Grid layout error codes
const (
	ErrCodeGridCapacityExceeded ErrorCode = "GRID_001"
	ErrCodeGridRowsExceeded     ErrorCode = "GRID_002"
	ErrCodeGridInputInvalid     ErrorCode = "GRID_003"
)

// Mesh construction error codes
const (
	ErrCodeMeshBuildFailed        ErrorCode = "MESH_001"
	ErrCodeMeshDegeneratePolygon  ErrorCode = "MESH_002"
	ErrCodeMeshTriangulationFailed ErrorCode = "MESH_003"
	ErrCodeMeshNotWatertight      ErrorCode = "MESH_004"
)

// Assembly / boolean-engine error codes
const (
	ErrCodeAssemblyEngineFailed  ErrorCode = "ASM_001"
	ErrCodeAssemblyAllEnginesFailed ErrorCode = "ASM_002"
	ErrCodeAssemblyTimeout       ErrorCode = "ASM_003"
	ErrCodeAssemblyRepairFailed  ErrorCode = "ASM_004"
)

// Export error codes
const (
	ErrCodeExportEncodeFailed ErrorCode = "EXP_001"
	ErrCodeExportEmptyMesh    ErrorCode = "EXP_002"
)

// Short aliases used across layers
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")

	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeValidation     = ErrCodeValidation
	CodeTimeout        = ErrCodeTimeout
	CodeNotImplemented = ErrCodeNotImplemented

	// Domain specific aliases
	CodeConfiguration    = ErrCodeGeometryParamInvalid
	CodeCapacityExceeded = ErrCodeGridCapacityExceeded
	CodeBuildFailed      = ErrCodeMeshBuildFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotImplemented:     http.StatusNotImplemented,
	ErrCodeRateLimited:        http.StatusTooManyRequests,

	ErrCodeGeometryParamInvalid:  http.StatusBadRequest,
	ErrCodeGeometryParamRange:    http.StatusBadRequest,
	ErrCodeGeometryParamUnknown:  http.StatusBadRequest,
	ErrCodeGeometryGridOversized: http.StatusBadRequest,
	ErrCodeGeometryShapeInvalid:  http.StatusBadRequest,

	ErrCodeGridCapacityExceeded: http.StatusUnprocessableEntity,
	ErrCodeGridRowsExceeded:     http.StatusUnprocessableEntity,
	ErrCodeGridInputInvalid:     http.StatusBadRequest,

	ErrCodeMeshBuildFailed:         http.StatusInternalServerError,
	ErrCodeMeshDegeneratePolygon:   http.StatusInternalServerError,
	ErrCodeMeshTriangulationFailed: http.StatusInternalServerError,
	ErrCodeMeshNotWatertight:       http.StatusInternalServerError,

	ErrCodeAssemblyEngineFailed:     http.StatusInternalServerError,
	ErrCodeAssemblyAllEnginesFailed: http.StatusInternalServerError,
	ErrCodeAssemblyTimeout:          http.StatusInternalServerError,
	ErrCodeAssemblyRepairFailed:     http.StatusInternalServerError,

	ErrCodeExportEncodeFailed: http.StatusInternalServerError,
	ErrCodeExportEmptyMesh:    http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeValidation:         "validation failed",
	ErrCodeTimeout:            "request timeout",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeNotImplemented:     "not implemented",
	ErrCodeRateLimited:        "rate limit exceeded",

	ErrCodeGeometryParamInvalid:  "invalid geometry parameter",
	ErrCodeGeometryParamRange:    "geometry parameter out of range",
	ErrCodeGeometryParamUnknown:  "unknown geometry parameter",
	ErrCodeGeometryGridOversized: "grid does not fit on the substrate",
	ErrCodeGeometryShapeInvalid:  "unsupported substrate shape",

	ErrCodeGridCapacityExceeded: "grid capacity exceeded",
	ErrCodeGridRowsExceeded:     "grid row count exceeded",
	ErrCodeGridInputInvalid:     "invalid braille input",

	ErrCodeMeshBuildFailed:         "mesh construction failed",
	ErrCodeMeshDegeneratePolygon:   "degenerate polygon",
	ErrCodeMeshTriangulationFailed: "polygon triangulation failed",
	ErrCodeMeshNotWatertight:       "mesh is not watertight",

	ErrCodeAssemblyEngineFailed:     "boolean engine failed",
	ErrCodeAssemblyAllEnginesFailed: "all boolean engines failed",
	ErrCodeAssemblyTimeout:          "boolean attempt timed out",
	ErrCodeAssemblyRepairFailed:     "mesh repair failed",

	ErrCodeExportEncodeFailed: "failed to encode model file",
	ErrCodeExportEmptyMesh:    "refusing to export an empty mesh",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
