package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/pricing"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/auth"
)

// RegistryService handles participant registration. Only the admin identity
// reaches these write paths; the role gate lives in the routing middleware.
type RegistryService struct {
	accounts AccountStore

	// initialUniversityCredits is the credit supply, in whole credits,
	// issued to a university when it is registered.
	initialUniversityCredits int64

	logger zerolog.Logger
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(accounts AccountStore, initialUniversityCredits int64, logger zerolog.Logger) *RegistryService {
	return &RegistryService{
		accounts:                 accounts,
		initialUniversityCredits: initialUniversityCredits,
		logger:                   logger,
	}
}

// RegisterUniversity registers a university and issues its initial credit
// supply. Purchases are transfers, so a university with no supply could
// never sell a single credit.
func (s *RegistryService) RegisterUniversity(ctx context.Context, req *dto.RegisterAccountRequest) (*models.Account, error) {
	initialBalance, err := pricing.CreditsToTokenUnits(s.initialUniversityCredits)
	if err != nil {
		return nil, err
	}
	return s.register(ctx, req, models.RoleUniversity, initialBalance)
}

// RegisterProfessor registers a professor
func (s *RegistryService) RegisterProfessor(ctx context.Context, req *dto.RegisterAccountRequest) (*models.Account, error) {
	return s.register(ctx, req, models.RoleProfessor, 0)
}

// RegisterStudent registers a student
func (s *RegistryService) RegisterStudent(ctx context.Context, req *dto.RegisterAccountRequest) (*models.Account, error) {
	return s.register(ctx, req, models.RoleStudent, 0)
}

func (s *RegistryService) register(ctx context.Context, req *dto.RegisterAccountRequest, roleType models.RoleType, initialBalance int64) (*models.Account, error) {
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "identity cannot be empty")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	account := &models.Account{
		Identity:     identity,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		RoleType:     roleType,
		PasswordHash: passwordHash,
	}

	if err := s.accounts.Create(ctx, account, initialBalance); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("identity", account.Identity).
		Str("role", string(roleType)).
		Int64("initialBalance", initialBalance).
		Msg("Account registered")

	return account, nil
}

// GetAccount retrieves one registered participant
func (s *RegistryService) GetAccount(ctx context.Context, identity string) (*models.Account, error) {
	return s.accounts.GetByIdentity(ctx, identity)
}

// ListUniversities returns all universities in registration order
func (s *RegistryService) ListUniversities(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.ListByRole(ctx, models.RoleUniversity)
}

// ListProfessors returns all professors in registration order
func (s *RegistryService) ListProfessors(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.ListByRole(ctx, models.RoleProfessor)
}

// ListStudents returns all students in registration order
func (s *RegistryService) ListStudents(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.ListByRole(ctx, models.RoleStudent)
}
