package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"AtendeBot/entity"
	"AtendeBot/internal/lib/sl"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword derives the stored form of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

type Repository interface {
	GetAdminUser(ctx context.Context, username string) (*entity.AdminUser, error)
	SaveToken(ctx context.Context, token entity.AuthToken) error
	GetUserByToken(ctx context.Context, token string) (*entity.AdminUser, error)
}

type Service struct {
	repository Repository
	log        *slog.Logger
}

func NewAuthService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		log:        logger.With(sl.Module("auth-service")),
	}
}

// Login checks the credentials against the stored admin account and issues a
// bearer token on success.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repository.GetAdminUser(ctx, username)
	if err != nil {
		s.log.Error("getting admin user", sl.Err(err))
		return "", err
	}
	if user == nil || user.PasswordHash != HashPassword(password) {
		return "", ErrInvalidCredentials
	}

	token := entity.AuthToken{
		Token:    uuid.NewString(),
		Username: user.Username,
	}
	if err := s.repository.SaveToken(ctx, token); err != nil {
		s.log.Error("saving auth token", sl.Err(err))
		return "", err
	}

	s.log.Info("admin logged in", slog.String("username", username))
	return token.Token, nil
}

// Authenticate resolves a bearer token to the admin user it was issued to.
func (s *Service) Authenticate(ctx context.Context, token string) (*entity.AdminUser, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repository.GetUserByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ValidateToken adapts Authenticate for the websocket upgrade path, which
// only needs the username.
func (s *Service) ValidateToken(token string) (string, error) {
	user, err := s.Authenticate(context.Background(), token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
