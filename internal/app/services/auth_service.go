package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	accounts   AccountStore
	tokens     RefreshTokenStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(accounts AccountStore, tokens RefreshTokenStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		accounts:   accounts,
		tokens:     tokens,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	account, err := s.accounts.GetByIdentity(ctx, req.Identity)
	if err != nil {
		// Do not leak whether the identity exists.
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		s.logger.Warn().Str("identity", req.Identity).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(account)
	if err != nil {
		s.logger.Error().Err(err).Str("identity", req.Identity).Msg("Error generating token pair")
		return nil, err
	}

	if err := s.tokens.CreateToken(ctx, refreshToken, account.Identity, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(expiresIn),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: int64(refreshExpiresIn),
		},
		Identity: account.Identity,
		Role:     string(account.RoleType),
	}, nil
}

// RevokeSessions revokes every refresh token issued to an identity. Active
// access tokens keep working until they expire; the sessions just cannot be
// renewed.
func (s *AuthService) RevokeSessions(ctx context.Context, identity string) error {
	if _, err := s.accounts.GetByIdentity(ctx, identity); err != nil {
		return err
	}

	if err := s.tokens.RevokeAllForIdentity(ctx, identity); err != nil {
		return err
	}

	s.logger.Info().Str("identity", identity).Msg("All sessions revoked")
	return nil
}

// RefreshToken rotates a refresh token and issues a fresh pair. The old
// token is revoked before the new one is handed out.
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.AuthResponse, error) {
	identity, err := s.tokens.GetTokenByValue(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByIdentity(ctx, identity)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	if err := s.tokens.RevokeToken(ctx, req.RefreshToken); err != nil {
		return nil, err
	}

	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(account)
	if err != nil {
		s.logger.Error().Err(err).Str("identity", identity).Msg("Error generating token pair")
		return nil, err
	}

	if err := s.tokens.CreateToken(ctx, refreshToken, account.Identity, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(expiresIn),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: int64(refreshExpiresIn),
		},
		Identity: account.Identity,
		Role:     string(account.RoleType),
	}, nil
}
