package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"farmfinance/backend/logger"
	"farmfinance/backend/middleware"
	"farmfinance/backend/models"
)

// envelope is the success body shared by every endpoint.
type envelope map[string]interface{}

func ok(fields envelope) envelope {
	fields["success"] = true
	return fields
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	middleware.WriteJSON(w, status, body)
}

// respondError maps err onto the error taxonomy. Unexpected errors are
// logged and hidden unless the server runs in development.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		log.Debug().Err(err).Msg("Validation failed")
		respondJSON(w, http.StatusBadRequest, middleware.Failure{Message: "Validation error", Errors: ve.Fields})
		return
	}

	status, fallback := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		body := middleware.Failure{Message: "Internal server error"}
		if h.development {
			body.Error = err.Error()
		}
		respondJSON(w, status, body)
		return
	}

	message := fallback
	var me *models.Error
	if errors.As(err, &me) && me.Message != "" {
		message = me.Message
	}
	log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	respondJSON(w, status, middleware.Failure{Message: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "Not authorized to access this resource"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized"
	case errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest, "Resource already exists"
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest, "Bad request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return models.NewError(models.ErrBadRequest, "Invalid request body")
}

// caller returns the authenticated identity. Routes that use it sit behind
// the authenticator, so a missing identity is a wiring error.
func caller(r *http.Request) (models.Identity, error) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return models.Identity{}, models.NewError(models.ErrUnauthorized, "No authentication token, access denied")
	}
	return id, nil
}
