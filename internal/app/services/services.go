package services

import (
	"context"
	"time"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/pricing"
	"github.com/opencampus/credisphere/internal/app/repositories"
	"github.com/opencampus/credisphere/internal/config"
	"github.com/opencampus/credisphere/internal/pkg/auth"
	"github.com/opencampus/credisphere/internal/pkg/logger"
)

// Storage interfaces the services depend on. The repositories package
// provides the Postgres implementations; tests swap in in-memory fakes.

// AccountStore persists registry accounts
type AccountStore interface {
	Create(ctx context.Context, account *models.Account, initialBalance int64) error
	GetByIdentity(ctx context.Context, identity string) (*models.Account, error)
	ListByRole(ctx context.Context, roleType models.RoleType) ([]*models.Account, error)
	ExistsWithRole(ctx context.Context, identity string, roleType models.RoleType) (bool, error)
}

// RefreshTokenStore persists refresh tokens
type RefreshTokenStore interface {
	CreateToken(ctx context.Context, token string, identity string, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (string, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllForIdentity(ctx context.Context, identity string) error
}

// LedgerStore persists credit token balances and the movement journal
type LedgerStore interface {
	TransferPurchase(ctx context.Context, studentIdentity, universityIdentity string, amount int64) error
	BalanceOf(ctx context.Context, identity string) (int64, error)
	ProvenanceBalanceOf(ctx context.Context, studentIdentity, universityIdentity string) (int64, error)
	MovementsOf(ctx context.Context, identity string) ([]*models.TokenMovement, error)
}

// CourseStore persists course offerings and teaching authorizations
type CourseStore interface {
	Create(ctx context.Context, course *models.CourseOffering) error
	GetByID(ctx context.Context, id int64) (*models.CourseOffering, error)
	GetAll(ctx context.Context) ([]*models.CourseOffering, error)
	SetAuthorization(ctx context.Context, auth *models.TeachingAuthorization) error
	GetAuthorization(ctx context.Context, courseID int64, universityIdentity string) (*models.TeachingAuthorization, error)
}

// EnrollmentStore persists enrollment records and their token spends.
// CreateEnrollment takes the cost function rather than a precomputed cost:
// the attempt count that feeds it must be read inside the same transaction
// that spends the tokens and mints the record.
type EnrollmentStore interface {
	CreateEnrollment(ctx context.Context, rec *models.EnrollmentRecord, course *models.CourseOffering, costFn pricing.CostFn) (int64, error)
	GetRecord(ctx context.Context, courseID, recordID int64) (*models.EnrollmentRecord, error)
	ListRecords(ctx context.Context, courseID int64) ([]*models.EnrollmentRecord, error)
	UpdateEvaluation(ctx context.Context, rec *models.EnrollmentRecord) error
	UpdateRelocation(ctx context.Context, rec *models.EnrollmentRecord, expectedOwner string) error
	CountOwnedBy(ctx context.Context, courseID int64, identity string) (int64, error)
	CountAttempts(ctx context.Context, courseID int64, studentIdentity string) (int64, error)
}

// Services holds all the service instances
type Services struct {
	AuthService     *AuthService
	RegistryService *RegistryService
	TokenService    *TokenService
	CourseService   *CourseService
}

// NewServices initializes all services on top of the Postgres repositories
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, cfg *config.Config) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.AccountRepository,
			repos.TokenRepository,
			jwtService,
			logger.GetLogger(),
		),
		RegistryService: NewRegistryService(
			repos.AccountRepository,
			cfg.Economy.InitialUniversityCredits,
			logger.GetLogger(),
		),
		TokenService: NewTokenService(
			repos.AccountRepository,
			repos.LedgerRepository,
			logger.GetLogger(),
		),
		CourseService: NewCourseService(
			repos.AccountRepository,
			repos.CourseRepository,
			repos.EnrollmentRepository,
			pricing.DefaultCourseTokenCost,
			logger.GetLogger(),
		),
	}
}
