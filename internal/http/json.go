package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/campuslife/campushub/internal/errors"
)

// Envelope is the uniform response shape for every JSON endpoint. Validation
// failures additionally carry field-level messages in Errors.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// maxRequestBody caps JSON request bodies at 1MB.
const maxRequestBody = 1 << 20

// DecodeJSON decodes JSON from the request body into the destination.
// Returns true if successful, false if an error response was already written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteJSON(w, http.StatusRequestEntityTooLarge, Envelope{
				Success: false,
				Message: "Request body is too large.",
			})
			return false
		}
		WriteJSON(w, http.StatusBadRequest, Envelope{
			Success: false,
			Message: "Request body is not valid JSON.",
		})
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects can't be recovered from here.
		return
	}
}

// WriteSuccess writes a 200 envelope with optional payload.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// WriteAppError translates the service error taxonomy into an HTTP response.
// Unclassified errors surface as one generic message; their detail stays in
// the server logs, never in the response body.
func WriteAppError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again."

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		code = http.StatusUnprocessableEntity
		message = apperrors.UserMessage(err)
	case apperrors.ErrCodeConflict:
		code = http.StatusConflict
		message = apperrors.UserMessage(err)
	case apperrors.ErrCodeNotFound:
		code = http.StatusNotFound
		message = apperrors.UserMessage(err)
	case apperrors.ErrCodeUnauthorized:
		code = http.StatusUnauthorized
		message = apperrors.UserMessage(err)
	case apperrors.ErrCodeForbidden:
		code = http.StatusForbidden
		message = apperrors.UserMessage(err)
	case apperrors.ErrCodeForeignKey:
		code = http.StatusUnprocessableEntity
		message = apperrors.UserMessage(err)
	case apperrors.ErrCodeTimeout:
		code = http.StatusGatewayTimeout
	}

	// Single-field validation errors carry their field in AppError.Field;
	// fold it into the map so clients see one errors shape either way.
	fields := apperrors.GetFields(err)
	if fields == nil && apperrors.IsValidation(err) {
		if field := apperrors.GetField(err); field != "" {
			fields = map[string]string{field: message}
		}
	}

	WriteJSON(w, code, Envelope{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}
