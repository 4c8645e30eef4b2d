package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"AtendeBot/entity"
)

type fakeRepo struct {
	user   *entity.AdminUser
	tokens map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		user: &entity.AdminUser{
			Username:     "admin",
			PasswordHash: HashPassword("admin"),
			Role:         "admin",
		},
		tokens: make(map[string]string),
	}
}

func (f *fakeRepo) GetAdminUser(_ context.Context, username string) (*entity.AdminUser, error) {
	if f.user != nil && f.user.Username == username {
		copied := *f.user
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepo) SaveToken(_ context.Context, token entity.AuthToken) error {
	f.tokens[token.Token] = token.Username
	return nil
}

func (f *fakeRepo) GetUserByToken(_ context.Context, token string) (*entity.AdminUser, error) {
	username, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("token not found")
	}
	return f.GetAdminUser(context.Background(), username)
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newFakeRepo()
	svc := NewAuthService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	token, err := svc.Login(context.Background(), "admin", "admin")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("got user %q", user.Username)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Login(context.Background(), "admin", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Login(context.Background(), "nobody", "admin")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateRejectsEmptyToken(t *testing.T) {
	svc := NewAuthService(newFakeRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := svc.Authenticate(context.Background(), ""); err == nil {
		t.Error("expected an error for an empty token")
	}
}

func TestValidateTokenReturnsUsername(t *testing.T) {
	svc := NewAuthService(newFakeRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	token, err := svc.Login(context.Background(), "admin", "admin")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	username, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if username != "admin" {
		t.Errorf("got %q", username)
	}
}
