package devserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// RegisterInput is the sign-up payload accepted by the backend.
type RegisterInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// Session is an issued credential together with its owner.
type Session struct {
	Token string
	User  *User
}

// Service implements account operations on top of a Repository. Issued
// tokens stay valid until they expire or their jti is revoked.
type Service struct {
	repo   Repository
	logger logging.Logger
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewService(repo Repository, cfg *Config, logger logging.Logger) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		secret:  []byte(cfg.SecretKey),
		ttl:     cfg.AccessTokenValidityDuration,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// SeedAdmin creates the administrator account unless it already exists.
func (s *Service) SeedAdmin(ctx context.Context, username, password, email string) error {
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = s.repo.Create(ctx, &User{
		Username:     username,
		Email:        email,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info(ctx, "admin account seeded", "username", username)
	return nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || len(in.Password) < minPasswordLength {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Role:         models.RoleUser,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to its user. Expired, revoked or
// orphaned tokens are rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, *Claims, error) {
	claims, err := ParseToken(token, s.secret, s.now())
	if err != nil {
		return nil, nil, err
	}
	if s.isRevoked(claims.ID) {
		return nil, nil, ErrTokenRevoked
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the token described by claims.
func (s *Service) Logout(_ context.Context, claims *Claims) {
	s.revoke(claims)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)) != nil {
		return ErrWrongPassword
	}
	if len(next) < minPasswordLength {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// DeleteAccount removes the account after re-checking its password and
// revokes the token used for the request.
func (s *Service) DeleteAccount(ctx context.Context, claims *Claims, password string) error {
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return ErrWrongPassword
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.revoke(claims)
	return nil
}

// ResetPassword pretends to mail a reset link. The reply never reveals
// whether the address is registered.
func (s *Service) ResetPassword(ctx context.Context, email string) {
	s.logger.Info(ctx, "password reset requested", "email", email)
}

func (s *Service) issue(user *User) (*Session, error) {
	token, _, err := GenerateToken(user.ID, s.secret, s.now(), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *Service) revoke(claims *Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for jti, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, jti)
		}
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked[claims.ID] = exp
}

func (s *Service) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.revoked[jti]
	return ok
}
