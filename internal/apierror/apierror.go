// Package apierror defines the error envelope every 4xx/5xx response of
// the facturador API uses. Handlers never hand raw error strings to
// clients: GORM errors, fiscal-authority SOAP faults and the like stay in
// the logs, and the client sees a detail message plus optional field map.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
