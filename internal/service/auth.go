package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/hash"
	"github.com/Skotchmaster/shivgems/internal/logging"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/repo"
	"github.com/Skotchmaster/shivgems/internal/tokens"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

const minPasswordLength = 6

type AuthService struct {
	Repo   *repo.GormRepo
	Issuer tokens.Issuer
	Events events.Publisher
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, claims, err := s.Issuer.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email required", ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, err
	}

	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID)
	events.Emit(ctx, s.Events, events.TopicUser, user.ID.String(), events.Event{
		Type:   "user_registered",
		UserID: user.ID.String(),
	})
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	res, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUser, user.ID.String(), events.Event{
		Type:   "user_logged_in",
		UserID: user.ID.String(),
	})
	return res, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.AccessClaims) error {
	if claims == nil || claims.ID == "" {
		return fmt.Errorf("%w: token has no id", ErrUnauthorized)
	}
	userID, err := claims.UserID()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	exp := time.Now().Add(s.Issuer.TTL)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return s.Repo.RevokeToken(ctx, claims.ID, userID, exp)
}

func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.Repo.IsRevoked(ctx, jti)
}

// EnsureAdmin creates the bootstrap admin, or promotes the account if it already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: admin email and a password of at least %d characters required", ErrValidation, minPasswordLength)
	}

	existing, err := s.Repo.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			if err := s.Repo.SetUserRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				return nil, err
			}
			existing.Role = models.RoleAdmin
		}
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := &models.User{Name: "Admin", Email: email, PasswordHash: pwHash, Role: models.RoleAdmin}
	if err := s.Repo.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
