package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/auth"
)

func testAuthService(t *testing.T, store *memStore) *AuthService {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	return NewAuthService(store, store, jwtService, zerolog.Nop())
}

func seedCredential(t *testing.T, store *memStore, identity, password string, roleType models.RoleType) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	err = store.Create(context.Background(), &models.Account{
		Identity:     identity,
		DisplayName:  identity,
		RoleType:     roleType,
		PasswordHash: hash,
	}, 0)
	if err != nil {
		t.Fatalf("seeding account: %v", err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	store := newMemStore()
	authSvc := testAuthService(t, store)
	seedCredential(t, store, "alice", "correct horse battery", models.RoleStudent)

	resp, err := authSvc.Login(context.Background(), &dto.LoginRequest{
		Identity: "alice",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if resp.Token.AccessToken == "" || resp.Token.RefreshToken == "" {
		t.Error("expected non-empty access and refresh tokens")
	}
	if resp.Identity != "alice" || resp.Role != string(models.RoleStudent) {
		t.Errorf("identity=%s role=%s, want alice STUDENT", resp.Identity, resp.Role)
	}
	if _, ok := store.tokens[resp.Token.RefreshToken]; !ok {
		t.Error("refresh token was not persisted")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMemStore()
	authSvc := testAuthService(t, store)
	seedCredential(t, store, "alice", "correct horse battery", models.RoleStudent)

	_, err := authSvc.Login(context.Background(), &dto.LoginRequest{
		Identity: "alice",
		Password: "wrong",
	})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownIdentity(t *testing.T) {
	store := newMemStore()
	authSvc := testAuthService(t, store)

	// Unknown identities fail the same way wrong passwords do.
	_, err := authSvc.Login(context.Background(), &dto.LoginRequest{
		Identity: "nobody",
		Password: "whatever",
	})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	store := newMemStore()
	authSvc := testAuthService(t, store)
	seedCredential(t, store, "alice", "correct horse battery", models.RoleStudent)

	login, err := authSvc.Login(context.Background(), &dto.LoginRequest{
		Identity: "alice",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := authSvc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.Token.RefreshToken,
	})
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if refreshed.Token.RefreshToken == login.Token.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The old token is revoked; a second use must fail.
	_, err = authSvc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.Token.RefreshToken,
	})
	if !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Fatalf("reused RefreshToken() error = %v, want ErrTokenRevoked", err)
	}
}

func TestRevokeSessionsInvalidatesRefreshTokens(t *testing.T) {
	store := newMemStore()
	authSvc := testAuthService(t, store)
	seedCredential(t, store, "alice", "correct horse battery", models.RoleStudent)

	login, err := authSvc.Login(context.Background(), &dto.LoginRequest{
		Identity: "alice",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := authSvc.RevokeSessions(context.Background(), "alice"); err != nil {
		t.Fatalf("RevokeSessions() error = %v", err)
	}

	_, err = authSvc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.Token.RefreshToken,
	})
	if !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Fatalf("RefreshToken() after revocation error = %v, want ErrTokenRevoked", err)
	}
}

func TestRevokeSessionsUnknownIdentity(t *testing.T) {
	store := newMemStore()
	authSvc := testAuthService(t, store)

	if err := authSvc.RevokeSessions(context.Background(), "nobody"); !errors.Is(err, apperrors.ErrNotRegistered) {
		t.Fatalf("RevokeSessions() error = %v, want ErrNotRegistered", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	store := newMemStore()
	authSvc := testAuthService(t, store)

	_, err := authSvc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: "not-a-token",
	})
	if !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Fatalf("RefreshToken() error = %v, want ErrTokenNotFound", err)
	}
}
