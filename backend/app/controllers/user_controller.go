package controllers

import (
	"mime"
	"net/http"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/app/middleware"
	"bugtracker/backend/app/models"
	"bugtracker/backend/app/services"

	validator "github.com/go-playground/validator/v10"
)

type UserController struct {
	Accounts *services.AccountService
	Validate *validator.Validate
}

func NewUserController(accounts *services.AccountService, v *validator.Validate) *UserController {
	return &UserController{Accounts: accounts, Validate: v}
}

// Signup handles POST /users/signup.
func (c *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decode(w, r, c.Validate, &req) {
		return
	}
	u, err := c.Accounts.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.UserResponse{Email: u.Email, Role: u.Role})
}

// AccessToken handles POST /users/access-token with the OAuth2 password
// form (username, password). A JSON body is accepted as well.
func (c *UserController) AccessToken(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if !decode(w, r, c.Validate, &req) {
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
			return
		}
		req = dto.LoginRequest{Username: r.PostFormValue("username"), Password: r.PostFormValue("password")}
		if err := c.Validate.Struct(req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, dto.ValidationDetail(err))
			return
		}
	}

	u, err := c.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := c.Accounts.IssueToken(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Dashboard handles GET /users/dashboard.
func (c *UserController) Dashboard(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r.Context())
	writeJSON(w, http.StatusOK, accountResponse(u))
}

func accountResponse(u *models.User) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}
