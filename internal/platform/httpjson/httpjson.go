// Package httpjson escribe y decodifica JSON en los handlers y traduce los
// errores de dominio a códigos HTTP.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hr-portal/internal/domain/apperr"
	"hr-portal/internal/platform/logger"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError mapea los errores de dominio a status HTTP.
// Cualquier otro error se loguea y se responde 500 sin detalles.
func WriteError(w http.ResponseWriter, log logger.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: apperr.Message(err)})
	case errors.Is(err, apperr.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: apperr.Message(err)})
	case errors.Is(err, apperr.ErrForbidden):
		WriteJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden", Message: apperr.Message(err)})
	case errors.Is(err, apperr.ErrConflict):
		WriteJSON(w, http.StatusConflict, errorResponse{Error: "conflict", Message: apperr.Message(err)})
	default:
		if log != nil {
			log.Error("request failed", map[string]any{"error": err.Error()})
		}
		WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

// Unauthorized se usa cuando falta el header X-Admin-Id.
func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "admin id required"})
}

// DecodeJSON decodifica el body rechazando campos desconocidos.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Invalid("invalid json")
	}
	return nil
}

// DecodeOptionalJSON igual que DecodeJSON pero acepta body vacío.
func DecodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Invalid("invalid json")
	}
	return nil
}
