package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string identifier for a specific error condition.
// Codes are grouped by module prefix: COMMON, PARSE, FORMULA, STORE, INTEL.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeExternalService    ErrorCode = "COMMON_011"
	ErrCodeUnknown            ErrorCode = "COMMON_999"
)

// CodeOK is the sentinel returned by GetCode for a nil error.
const CodeOK = ErrorCode("OK")

// Parser module error codes.  The parser itself is total and drops bad
// tokens silently; these codes exist for the interface layers that need to
// report "nothing usable was typed" to a caller.
const (
	ErrCodeParseEmptyInput  ErrorCode = "PARSE_001"
	ErrCodeParseNoHerbs     ErrorCode = "PARSE_002"
	ErrCodeParseTextTooLong ErrorCode = "PARSE_003"
)

// Formula catalog error codes.
const (
	ErrCodeFormulaNotFound         ErrorCode = "FORMULA_001"
	ErrCodeFormulaExists           ErrorCode = "FORMULA_002"
	ErrCodeFormulaInvalidName      ErrorCode = "FORMULA_003"
	ErrCodeFormulaEmptyComposition ErrorCode = "FORMULA_004"
	ErrCodeFormulaInvalidDosage    ErrorCode = "FORMULA_005"
)

// Storage error codes.
const (
	ErrCodeStoreConnection    ErrorCode = "STORE_001"
	ErrCodeStoreQuery         ErrorCode = "STORE_002"
	ErrCodeStoreMigration     ErrorCode = "STORE_003"
	ErrCodeStoreSerialization ErrorCode = "STORE_004"
)

// Intelligence (external identification / analysis) error codes.
const (
	ErrCodeIdentifyFailed     ErrorCode = "INTEL_001"
	ErrCodeIdentifyBadPayload ErrorCode = "INTEL_002"
	ErrCodeAnalysisFailed     ErrorCode = "INTEL_003"
	ErrCodeIntelUnavailable   ErrorCode = "INTEL_004"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.  Codes absent
// from the map default to 500.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeUnknown:            http.StatusInternalServerError,

	ErrCodeParseEmptyInput:  http.StatusBadRequest,
	ErrCodeParseNoHerbs:     http.StatusUnprocessableEntity,
	ErrCodeParseTextTooLong: http.StatusRequestEntityTooLarge,

	ErrCodeFormulaNotFound:         http.StatusNotFound,
	ErrCodeFormulaExists:           http.StatusConflict,
	ErrCodeFormulaInvalidName:      http.StatusUnprocessableEntity,
	ErrCodeFormulaEmptyComposition: http.StatusUnprocessableEntity,
	ErrCodeFormulaInvalidDosage:    http.StatusUnprocessableEntity,

	ErrCodeStoreConnection:    http.StatusServiceUnavailable,
	ErrCodeStoreQuery:         http.StatusInternalServerError,
	ErrCodeStoreMigration:     http.StatusInternalServerError,
	ErrCodeStoreSerialization: http.StatusInternalServerError,

	ErrCodeIdentifyFailed:     http.StatusBadGateway,
	ErrCodeIdentifyBadPayload: http.StatusBadGateway,
	ErrCodeAnalysisFailed:     http.StatusBadGateway,
	ErrCodeIntelUnavailable:   http.StatusServiceUnavailable,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of a code ("COMMON", "FORMULA", ...).
func ModuleForCode(code ErrorCode) string {
	s := string(code)
	if i := strings.IndexByte(s, '_'); i > 0 {
		return s[:i]
	}
	return s
}
