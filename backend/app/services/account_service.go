package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bugtracker/backend/app/credential"
	jwtutil "bugtracker/backend/app/jwt"
	"bugtracker/backend/app/models"
	"bugtracker/backend/app/repo"

	"gorm.io/gorm"
)

type AccountService struct {
	users  *repo.UserRepository
	hasher credential.Hasher
	tokens *jwtutil.Signer
}

func NewAccountService(users *repo.UserRepository, hasher credential.Hasher, tokens *jwtutil.Signer) *AccountService {
	return &AccountService{users: users, hasher: hasher, tokens: tokens}
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Register creates a new account. Role defaults to developer.
func (s *AccountService) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = models.RoleDeveloper
	}
	count, err := s.users.CountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, detailed(ErrDuplicateEmail, "user already exists")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: email, PasswordHash: hash, Role: role, IsActive: true}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, detailed(ErrDuplicateEmail, "user already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks the password against the stored hash.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, detailed(ErrInvalidCredentials, "Incorrect email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		return nil, detailed(ErrInvalidCredentials, "Incorrect email or password")
	}
	if !u.IsActive {
		return nil, detailed(ErrInactiveAccount, "Inactive account")
	}
	return u, nil
}

// IssueToken signs a bearer token for u with the configured lifetime.
func (s *AccountService) IssueToken(u *models.User) (string, error) {
	return s.tokens.Sign(u.Email)
}

// HasRole reports whether the account exists and holds role. A missing
// account is not an error.
func (s *AccountService) HasRole(ctx context.Context, email, role string) (bool, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find user: %w", err)
	}
	return u.Role == role, nil
}

// CurrentAccount resolves a bearer token to its account.
func (s *AccountService) CurrentAccount(ctx context.Context, token string) (*models.User, error) {
	email, err := s.tokens.Parse(token)
	if err != nil {
		return nil, detailed(ErrInvalidToken, "invalid access token")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, detailed(ErrInvalidToken, "invalid access token")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// SetActive enables or disables login for an account.
func (s *AccountService) SetActive(ctx context.Context, email string, active bool) error {
	n, err := s.users.SetActive(ctx, normalizeEmail(email), active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if n == 0 {
		return detailed(ErrNotFound, "User not found")
	}
	return nil
}
