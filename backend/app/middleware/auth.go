package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/app/services"
	"bugtracker/backend/global"
)

type ctxKey int

const (
	UserKey ctxKey = iota + 1
	RequestIDKey
	RouteKey
)

type Auth struct{ Accounts *services.AccountService }

// RequireAuth resolves the bearer token to an account and stores it in the
// request context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(authz, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			unauthorized(w, "Not authenticated")
			return
		}
		u, err := a.Accounts.CurrentAccount(r.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				unauthorized(w, services.Detail(err, "invalid access token"))
				return
			}
			global.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("resolve current account")
			writeDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}
		ctx := context.WithValue(r.Context(), UserKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects authenticated callers that do not hold role. It must
// run inside RequireAuth.
func (a *Auth) RequireRole(role, detail string, next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := GetUser(r.Context())
		ok, err := a.Accounts.HasRole(r.Context(), u.Email, role)
		if err != nil {
			global.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("check role")
			writeDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !ok {
			unauthorized(w, detail)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Detail: detail})
}
