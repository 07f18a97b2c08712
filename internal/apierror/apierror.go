package apierror

import (
	"encoding/json"
	"net/http"

	"github.com/departamento-policia/api/internal/validation"
)

// Error is the single error type crossing the service -> handler boundary.
// It carries the HTTP status and the uniform error body fields.
type Error struct {
	StatusCode int
	Message    string
	Erros      validation.Errors
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound covers both a missing primary target and a dangling reference;
// callers pick the message, the status is always 404.
func NotFound(message string) *Error {
	return &Error{StatusCode: http.StatusNotFound, Message: message}
}

// Validation wraps accumulated field errors into a 400 response.
func Validation(erros validation.Errors) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Message:    "Dados inválidos fornecidos",
		Erros:      erros,
	}
}

func BadRequest(message string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, Message: message}
}

// body is the wire shape of every error response.
type body struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Erros      validation.Errors `json:"erros,omitempty"`
}

// Write renders err as the uniform error payload. Anything that is not an
// *Error becomes a generic 500 so internals never leak to clients.
func Write(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*Error)
	if !ok {
		apiErr = &Error{StatusCode: http.StatusInternalServerError, Message: "Erro interno no servidor."}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	_ = json.NewEncoder(w).Encode(body{
		Status:     "error",
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Erros:      apiErr.Erros,
	})
}
