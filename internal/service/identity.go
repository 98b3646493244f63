// Package service implements the application's business rules on top of the
// repository interfaces. Every operation that depends on who is asking takes
// the caller as an explicit *model.User (nil for anonymous), so the rules are
// testable without HTTP or session plumbing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/sakif/newsdesk/internal/apperror"
	"github.com/sakif/newsdesk/internal/auth"
	"github.com/sakif/newsdesk/internal/metrics"
	"github.com/sakif/newsdesk/internal/model"
	"github.com/sakif/newsdesk/internal/repository"
)

const minPasswordLength = 8

// IdentityService handles accounts, sessions, and role management.
type IdentityService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewIdentityService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is what a successful login or registration yields: the account
// and a fresh session token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Login verifies the email/password pair and issues a session token.
// Unknown email and wrong password produce the same error, so the endpoint
// cannot be used to probe which addresses have accounts.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("password", "failure").Inc()
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	// GitHub-only accounts have no password hash; they must use OAuth.
	if user.PasswordHash == "" {
		metrics.LoginsTotal.WithLabelValues("password", "failure").Inc()
		return nil, apperror.InvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		metrics.LoginsTotal.WithLabelValues("password", "failure").Inc()
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("password", "success").Inc()
	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	return &AuthResult{User: user, Token: token}, nil
}

// RegisterInput is the payload for account creation. Role is optional and
// defaults to reader.
type RegisterInput struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
}

func (in RegisterInput) validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(minPasswordLength, 72)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Role, validation.By(func(any) error {
			if in.Role != "" && !model.ValidRole(in.Role) {
				return errors.New("must be admin, employee, or reader")
			}
			return nil
		})),
	))
}

// Register creates an account and logs it straight in. A taken email is a
// conflict; the role defaults to reader when the input leaves it empty.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := in.validate(); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = model.RoleReader
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &model.User{
		Email:        in.Email,
		Name:         in.Name,
		Role:         role,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)

	return &AuthResult{User: user, Token: token}, nil
}

// LoginWithGitHub signs a user in from a completed GitHub OAuth exchange,
// creating a reader account on first login. GitHub users who hide their email
// get the noreply address GitHub itself uses for commits.
func (s *IdentityService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	name := gh.Name
	if name == "" {
		name = gh.Login
	}

	email := gh.Email
	if email == "" {
		email = fmt.Sprintf("%s@users.noreply.github.com", gh.Login)
	}

	user := &model.User{
		Email:     email,
		Name:      name,
		Role:      model.RoleReader,
		GitHubID:  gh.ID,
		AvatarURL: gh.AvatarURL,
	}

	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		metrics.LoginsTotal.WithLabelValues("github", "failure").Inc()
		return nil, fmt.Errorf("github login: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("github login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("github", "success").Inc()
	s.logger.Info("user logged in via github", "user_id", user.ID, "github_login", gh.Login)

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID fetches a user record. Used by the auth middleware to resolve
// the token subject into the request's caller.
func (s *IdentityService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns every account. Admin only.
func (s *IdentityService) ListUsers(ctx context.Context, caller *model.User) ([]model.User, error) {
	if err := requireAdmin(caller, "list users"); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// UpdateUserRole changes a user's role. Admin only. An admin may demote
// themselves; the result takes effect on their next request.
func (s *IdentityService) UpdateUserRole(ctx context.Context, caller *model.User, userID string, role model.Role) (*model.User, error) {
	if err := requireAdmin(caller, "change user roles"); err != nil {
		return nil, err
	}
	if !model.ValidRole(role) {
		return nil, apperror.ValidationFailed("role", "role must be admin, employee, or reader")
	}

	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role changed",
		"user_id", user.ID, "new_role", role, "changed_by", caller.ID)

	return user, nil
}

// requireAdmin is the shared guard for management operations: anonymous
// callers are unauthenticated, non-admins are forbidden.
func requireAdmin(caller *model.User, action string) error {
	if caller == nil {
		return apperror.Unauthenticated("authentication required to " + action)
	}
	if !caller.CanManageUsers() {
		return apperror.Forbidden("only admins can " + action)
	}
	return nil
}
