package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/opencampus/credisphere/internal/app/models"
	appRepos "github.com/opencampus/credisphere/internal/app/repositories"
	"github.com/opencampus/credisphere/internal/config"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/auth"
)

// CreateDefaultData ensures the configured admin account exists. Every
// registry write requires the admin, so a fresh database without one would
// be unusable.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	accountRepo := appRepos.NewAccountRepository(dbPool)

	lgr.Info().Str("identity", cfg.Admin.Identity).Msg("Checking/Creating admin account...")

	passwordHash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &appModels.Account{
		Identity:     cfg.Admin.Identity,
		DisplayName:  cfg.Admin.DisplayName,
		RoleType:     appModels.RoleAdmin,
		PasswordHash: passwordHash,
	}

	err = accountRepo.Create(ctx, admin, 0)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyRegistered) {
			lgr.Info().Str("identity", cfg.Admin.Identity).Msg("Admin account already exists")
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating admin account")
		return err
	}

	lgr.Info().Str("identity", cfg.Admin.Identity).Msg("Admin account created")
	return nil
}
