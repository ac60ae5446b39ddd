package router

import (
	"net/http"

	"bugtracker/backend/app/controllers"
	"bugtracker/backend/app/middleware"
	"bugtracker/backend/app/models"
)

type Controllers struct {
	HTTP     *controllers.HTTPController
	Users    *controllers.UserController
	Projects *controllers.ProjectController
	Bugs     *controllers.BugController
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(c Controllers, mw *middleware.Auth) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.WithRoute(pattern, h))
	}
	authed := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(h) }
	manager := func(detail string, h http.HandlerFunc) http.Handler {
		return mw.RequireRole(models.RoleManager, detail, h)
	}

	// public
	handle("GET /{$}", http.HandlerFunc(c.HTTP.Root))
	handle("GET /healthz", http.HandlerFunc(c.HTTP.Healthz))
	if c.Metrics != nil {
		handle("GET /metrics", c.Metrics)
	}

	// users
	handle("POST /users/signup", http.HandlerFunc(c.Users.Signup))
	handle("POST /users/access-token", http.HandlerFunc(c.Users.AccessToken))
	handle("GET /users/dashboard", authed(c.Users.Dashboard))

	// projects (managers only)
	handle("POST /projects/create", manager("You are not authorized to create a project", c.Projects.Create))
	handle("GET /projects/{$}", manager("You are not authorized.", c.Projects.List))
	handle("PUT /projects/{project_id}", manager("You are not authorized.", c.Projects.Update))
	handle("DELETE /projects/{project_id}", manager("You are not authorized.", c.Projects.Delete))

	// bugs
	handle("POST /bugs/{$}", manager("You are not authorized to create a ticket.", c.Bugs.Create))
	handle("GET /bugs/projects/{project_id}", authed(c.Bugs.ListByProject))
	handle("GET /bugs/{bug_id}", authed(c.Bugs.Get))
	handle("PUT /bugs/{bug_id}", authed(c.Bugs.Update))
	handle("DELETE /bugs/{bug_id}", authed(c.Bugs.Delete))

	return mux
}
