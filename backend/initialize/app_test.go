package initialize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bugtracker/backend/app/dbtest"
	"bugtracker/backend/app/models"
	"bugtracker/backend/app/notify"
	"bugtracker/backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		HTTP:         config.HTTP{Host: "127.0.0.1", Port: 8000},
		DB:           config.DB{Driver: "sqlite"},
		JWT:          config.JWT{Secret: "test-secret", Issuer: "bugtracker", TTL: 30 * time.Minute},
		Notify:       config.Notify{Workers: 1, Buffer: 10},
		PasswordCost: bcrypt.MinCost,
	}
	return Assemble(cfg, dbtest.Open(t), nil)
}

type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func (c client) login(email, password string) *httptest.ResponseRecorder {
	c.t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/users/access-token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

// account signs up, logs in and returns the token and account id.
func (c client) account(email, role string) (string, uint) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/users/signup", "", map[string]string{"email": email, "password": "secret123", "role": role})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.login(email, "secret123")
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(c.t, rec, &tok)

	rec = c.do(http.MethodGet, "/users/dashboard", tok.AccessToken, nil)
	require.Equal(c.t, http.StatusOK, rec.Code)
	var me struct {
		ID uint `json:"id"`
	}
	decodeBody(c.t, rec, &me)
	return tok.AccessToken, me.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decodeBody(t, rec, &body)
	return body.Detail
}

func TestRootAndHealth(t *testing.T) {
	c := client{t: t, h: newTestApp(t).Router}

	rec := c.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"hello world"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = c.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignupDuplicateKeepsOriginalAccount(t *testing.T) {
	c := client{t: t, h: newTestApp(t).Router}

	body := map[string]string{"email": "Dev@Mail.com", "password": "secret123"}
	rec := c.do(http.MethodPost, "/users/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"email":"dev@mail.com","role":"developer"}`, rec.Body.String())

	body["password"] = "another-password"
	rec = c.do(http.MethodPost, "/users/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user already exists", detailOf(t, rec))

	rec = c.login("dev@mail.com", "secret123")
	require.Equal(t, http.StatusOK, rec.Code)
	var tok map[string]string
	decodeBody(t, rec, &tok)
	assert.NotEmpty(t, tok["access_token"])
	assert.Equal(t, "bearer", tok["token_type"])
}

func TestSignupValidation(t *testing.T) {
	c := client{t: t, h: newTestApp(t).Router}

	rec := c.do(http.MethodPost, "/users/signup", "", map[string]string{"email": "dev@mail.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "password is required", detailOf(t, rec))

	rec = c.do(http.MethodPost, "/users/signup", "", map[string]string{"email": "dev@mail.com", "password": "secret123", "role": "admin"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	c := client{t: t, h: app.Router}
	c.account("dev@mail.com", models.RoleDeveloper)

	rec := c.login("dev@mail.com", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Incorrect email or password", detailOf(t, rec))

	rec = c.do(http.MethodPost, "/users/access-token", "", map[string]string{"username": "dev@mail.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, app.Accounts.SetActive(context.Background(), "dev@mail.com", false))
	rec = c.login("dev@mail.com", "secret123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Inactive account", detailOf(t, rec))
}

func TestDashboardRequiresToken(t *testing.T) {
	c := client{t: t, h: newTestApp(t).Router}

	rec := c.do(http.MethodGet, "/users/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", detailOf(t, rec))

	rec = c.do(http.MethodGet, "/users/dashboard", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid access token", detailOf(t, rec))
}

func TestProjectRoutes(t *testing.T) {
	c := client{t: t, h: newTestApp(t).Router}
	manager, _ := c.account("m@mail.com", models.RoleManager)
	other, _ := c.account("m2@mail.com", models.RoleManager)
	dev, _ := c.account("d@mail.com", models.RoleDeveloper)

	rec := c.do(http.MethodPost, "/projects/create", dev, map[string]string{"name": "p"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "You are not authorized to create a project", detailOf(t, rec))

	rec = c.do(http.MethodPost, "/projects/create", manager, map[string]string{"name": "p", "description": "first"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, rec, &p)
	assert.Equal(t, "p", p.Name)

	rec = c.do(http.MethodGet, "/projects/", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)

	rec = c.do(http.MethodGet, "/projects/", other, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	path := fmt.Sprintf("/projects/%d", p.ID)
	rec = c.do(http.MethodPut, path, other, map[string]string{"name": "stolen"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPut, path, manager, map[string]string{"name": "renamed"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"msg":"Project updated successfully."}`, rec.Body.String())

	rec = c.do(http.MethodPut, "/projects/999", manager, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found.", detailOf(t, rec))

	rec = c.do(http.MethodDelete, "/projects/abc", manager, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodDelete, path, manager, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestTicketLifecycle(t *testing.T) {
	app := newTestApp(t)
	c := client{t: t, h: app.Router}
	manager, _ := c.account("m@mail.com", models.RoleManager)
	devD, idD := c.account("d@mail.com", models.RoleDeveloper)
	devE, _ := c.account("e@mail.com", models.RoleDeveloper)

	rec := c.do(http.MethodPost, "/projects/create", manager, map[string]string{"name": "p"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var p struct {
		ID uint `json:"id"`
	}
	decodeBody(t, rec, &p)

	newBug := map[string]any{
		"title":       "crash",
		"description": "on start",
		"severity":    models.SeverityHigh,
		"status":      models.StatusOpen,
		"project_id":  p.ID,
		"assigned_to": []uint{idD},
	}
	rec = c.do(http.MethodPost, "/bugs/", devD, newBug)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/bugs/", manager, newBug)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b struct {
		ID         uint   `json:"id"`
		AssignedTo []uint `json:"assigned_to"`
	}
	decodeBody(t, rec, &b)
	assert.Equal(t, []uint{idD}, b.AssignedTo)

	newBug["assigned_to"] = []uint{idD, 999}
	rec = c.do(http.MethodPost, "/bugs/", manager, newBug)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	bugPath := fmt.Sprintf("/bugs/%d", b.ID)
	rec = c.do(http.MethodPut, bugPath, devD, map[string]string{"status": models.StatusClosed})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Bug updated successfully"}`, rec.Body.String())

	rec = c.do(http.MethodPut, bugPath, devE, map[string]string{"status": models.StatusOpen})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPut, bugPath, devD, map[string]string{"status": "done"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodDelete, bugPath, devE, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	listPath := fmt.Sprintf("/bugs/projects/%d", p.ID)
	rec = c.do(http.MethodGet, listPath+"?status=closed", devE, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bugs []map[string]any
	decodeBody(t, rec, &bugs)
	assert.Len(t, bugs, 1)

	rec = c.do(http.MethodGet, listPath+"?severity=urgent", devE, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = c.do(http.MethodGet, listPath+"?limit=0", devE, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodGet, bugPath, devE, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Status  string         `json:"status"`
		Project map[string]any `json:"project"`
		Users   []struct {
			Email string `json:"email"`
		} `json:"assigned_to"`
	}
	decodeBody(t, rec, &detail)
	assert.Equal(t, models.StatusClosed, detail.Status)
	assert.NotNil(t, detail.Project)
	require.Len(t, detail.Users, 1)
	assert.Equal(t, "d@mail.com", detail.Users[0].Email)

	q, ok := app.Queue.(*notify.MemoryQueue)
	require.True(t, ok)
	assert.Equal(t, 2, q.Len())

	rec = c.do(http.MethodDelete, fmt.Sprintf("/projects/%d", p.ID), manager, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodGet, bugPath, devE, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"project":null`)

	rec = c.do(http.MethodDelete, bugPath, manager, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodGet, bugPath, manager, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bug not found", detailOf(t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	c := client{t: t, h: newTestApp(t).Router}
	c.do(http.MethodGet, "/", "", nil)

	rec := c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bugtracker_http_requests_total{code="200",method="GET",route="GET /{$}"} 1`)
}

func TestNewLogger(t *testing.T) {
	SetLevel(false)
	t.Cleanup(func() { SetLevel(true) })

	var buf strings.Builder
	logger := NewLogger(&buf, false)
	logger.Debug().Msg("hidden")
	logger.Info().Str("k", "v").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)
}
