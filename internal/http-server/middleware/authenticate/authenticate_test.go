package authenticate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"AtendeBot/entity"
)

type fakeAuth struct{}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*entity.AdminUser, error) {
	if token == "valid-token" {
		return &entity.AdminUser{Username: "admin"}, nil
	}
	return nil, errors.New("token not found")
}

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	mw := New(slog.New(slog.NewTextHandler(io.Discard, nil)), &fakeAuth{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/sessions", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec, called
}

func TestAuthenticateValidToken(t *testing.T) {
	rec, called := serve(t, "Bearer valid-token")
	if !called {
		t.Fatal("next handler not reached")
	}
	if got := rec.Header().Get("X-User"); got != "admin" {
		t.Errorf("X-User header %q", got)
	}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	rec, called := serve(t, "")
	if called {
		t.Error("next handler must not run without credentials")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}

func TestAuthenticateBareBearerHeader(t *testing.T) {
	// "Authorization: Bearer" with nothing after it must be a clean 401.
	rec, called := serve(t, "Bearer")
	if called {
		t.Error("next handler must not run without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}

func TestAuthenticateRejectedToken(t *testing.T) {
	rec, called := serve(t, "Bearer wrong-token")
	if called {
		t.Error("next handler must not run for an unknown token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}
