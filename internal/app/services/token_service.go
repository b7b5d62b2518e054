package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/pricing"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

// TokenService handles credit token purchases and balance queries
type TokenService struct {
	accounts AccountStore
	ledger   LedgerStore
	logger   zerolog.Logger
}

// NewTokenService creates a new TokenService
func NewTokenService(accounts AccountStore, ledger LedgerStore, logger zerolog.Logger) *TokenService {
	return &TokenService{
		accounts: accounts,
		ledger:   ledger,
		logger:   logger,
	}
}

// Purchase sells credit tokens from a university to the calling student.
// The payment must match the quoted price exactly; anything else rejects
// the whole purchase before the ledger is touched.
func (s *TokenService) Purchase(ctx context.Context, callerIdentity string, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	isStudent, err := s.accounts.ExistsWithRole(ctx, callerIdentity, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	if !isStudent {
		return nil, apperrors.ErrNotRegistered
	}

	isUniversity, err := s.accounts.ExistsWithRole(ctx, req.UniversityIdentity, models.RoleUniversity)
	if err != nil {
		return nil, err
	}
	if !isUniversity {
		return nil, apperrors.ErrNotRegistered
	}

	required, err := pricing.CreditsToPayment(req.Credits)
	if err != nil {
		return nil, err
	}

	if req.Payment != required {
		return nil, apperrors.NewCustomError(apperrors.ErrPaymentMismatch,
			"payment does not match the required amount").
			WithDetails(map[string]interface{}{"required": required, "payment": req.Payment})
	}

	units, err := pricing.CreditsToTokenUnits(req.Credits)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.TransferPurchase(ctx, callerIdentity, req.UniversityIdentity, units); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("student", callerIdentity).
		Str("university", req.UniversityIdentity).
		Int64("credits", req.Credits).
		Int64("tokenUnits", units).
		Msg("Credit tokens purchased")

	return &dto.PurchaseResponse{
		UniversityIdentity: req.UniversityIdentity,
		Credits:            req.Credits,
		TokenUnits:         units,
		Payment:            req.Payment,
	}, nil
}

// BalanceOf returns the total token balance of an identity. Balances are
// private: only the holder and the admin may read them.
func (s *TokenService) BalanceOf(ctx context.Context, callerIdentity, callerRole, identity string) (int64, error) {
	if err := s.authorizeRead(callerIdentity, callerRole, identity); err != nil {
		return 0, err
	}
	return s.ledger.BalanceOf(ctx, identity)
}

// ProvenanceBalanceOf returns the sub-balance a student holds from one
// issuing university. Readable by the student, the university and the admin.
func (s *TokenService) ProvenanceBalanceOf(ctx context.Context, callerIdentity, callerRole, studentIdentity, universityIdentity string) (int64, error) {
	if callerIdentity != studentIdentity && callerIdentity != universityIdentity &&
		callerRole != string(models.RoleAdmin) {
		return 0, apperrors.ErrUnauthorized
	}
	return s.ledger.ProvenanceBalanceOf(ctx, studentIdentity, universityIdentity)
}

// MovementsOf returns the journal entries an identity took part in
func (s *TokenService) MovementsOf(ctx context.Context, callerIdentity, callerRole, identity string) ([]*models.TokenMovement, error) {
	if err := s.authorizeRead(callerIdentity, callerRole, identity); err != nil {
		return nil, err
	}
	return s.ledger.MovementsOf(ctx, identity)
}

func (s *TokenService) authorizeRead(callerIdentity, callerRole, identity string) error {
	if callerIdentity == identity || callerRole == string(models.RoleAdmin) {
		return nil
	}
	return apperrors.ErrUnauthorized
}
