package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/app/middleware"
	"bugtracker/backend/app/services"
	"bugtracker/backend/global"

	validator "github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, dto.ErrorResponse{Detail: detail})
}

// writeError maps a service error to its HTTP status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInactiveAccount),
		errors.Is(err, services.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrInvalidAssignee):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateEmail):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	default:
		global.Logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("method", r.Method).
			Str("route", middleware.GetRoute(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeDetail(w, status, services.Detail(err, err.Error()))
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	if err := v.Struct(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, dto.ValidationDetail(err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
