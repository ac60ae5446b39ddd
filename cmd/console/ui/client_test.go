package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bugtracker/backend/app/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/access-token", func(w http.ResponseWriter, r *http.Request) {
		if r.PostFormValue("username") != "d@mail.com" || r.PostFormValue("password") != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Detail: "Incorrect email or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(dto.TokenResponse{AccessToken: "tok", TokenType: "bearer"})
	})
	mux.HandleFunc("GET /users/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(dto.AccountResponse{ID: 2, Email: "d@mail.com", Role: "developer"})
	})
	mux.HandleFunc("GET /bugs/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.PathValue("id"))
		assert.Equal(t, "closed", r.URL.Query().Get("status"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode([]dto.BugResponse{{ID: 3, Title: "crash", Status: "closed"}})
	})
	mux.HandleFunc("PUT /bugs/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "closed", req["status"])
		assert.Nil(t, req["title"])
		_ = json.NewEncoder(w).Encode(dto.MessageResponse{Msg: "Bug updated successfully"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLogin(t *testing.T) {
	srv := fakeAPI(t)
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	err := c.Login(ctx, "d@mail.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password (401)", apiErr.Error())
	assert.Empty(t, c.Token)

	require.NoError(t, c.Login(ctx, "d@mail.com", "secret123"))
	assert.Equal(t, "tok", c.Token)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "d@mail.com", me.Email)
}

func TestClientBugs(t *testing.T) {
	srv := fakeAPI(t)
	c := NewClient(srv.URL)
	c.Token = "tok"
	ctx := context.Background()

	bugs, err := c.Bugs(ctx, 7, "closed", 100)
	require.NoError(t, err)
	require.Len(t, bugs, 1)
	assert.Equal(t, "crash", bugs[0].Title)

	require.NoError(t, c.SetStatus(ctx, 3, "closed"))

	_, err = c.Bug(ctx, 3)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusMethodNotAllowed, apiErr.Status)
}
