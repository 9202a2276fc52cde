package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

type RegisterInput struct {
	Handle      string          `json:"handle"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Role        models.UserRole `json:"role,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo    repositories.UserRepository
	adminEmails map[string]bool
	logger      *slog.Logger
}

// NewAuthService creates the service. Accounts registered with one of
// adminEmails become admins; everyone else picks player or viewer.
func NewAuthService(userRepo repositories.UserRepository, adminEmails []string, logger *slog.Logger) AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &authService{userRepo: userRepo, adminEmails: admins, logger: logger}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)
	handle := strings.TrimSpace(input.Handle)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if handle == "" {
		return nil, fmt.Errorf("%w: handle is required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	switch {
	case s.adminEmails[email]:
		role = models.RoleAdmin
	case role == "":
		role = models.RolePlayer
	case role != models.RolePlayer && role != models.RoleViewer:
		return nil, fmt.Errorf("%w: role %q cannot be self-assigned", ErrForbiddenOperation, role)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = handle
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Handle:       handle,
		DisplayName:  displayName,
		Email:        email,
		Role:         role,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID), slog.String("role", string(user.Role)))
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	user.PasswordHash = ""
	return user, nil
}
