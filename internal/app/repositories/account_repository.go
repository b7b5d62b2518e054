package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/db"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/dberrors"
	"github.com/opencampus/credisphere/internal/pkg/logger"
)

// AccountRepository handles participant registry database operations
type AccountRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create registers a new account together with its zero-valued balance row.
// When initialBalance is positive the amount is credited immediately and
// journaled as an issuance, all inside the same transaction.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account, initialBalance int64) error {
	account.RegisteredAt = time.Now()

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		insertSQL, args, err := r.sb.Insert("accounts").
			Columns("identity", "display_name", "role", "password_hash", "registered_at").
			Values(account.Identity, account.DisplayName, string(account.RoleType), account.PasswordHash, account.RegisteredAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert account query: %w", err)
		}

		if _, err := tx.Exec(ctx, insertSQL, args...); err != nil {
			if dberrors.IsDuplicateKeyError(err) {
				return apperrors.ErrAlreadyRegistered
			}
			return fmt.Errorf("error creating account: %w", err)
		}

		balanceSQL, args, err := r.sb.Insert("credit_balances").
			Columns("identity", "balance").
			Values(account.Identity, initialBalance).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert balance query: %w", err)
		}

		if _, err := tx.Exec(ctx, balanceSQL, args...); err != nil {
			return fmt.Errorf("error creating balance row: %w", err)
		}

		if initialBalance > 0 {
			movementSQL, args, err := r.sb.Insert("token_movements").
				Columns("kind", "to_identity", "amount").
				Values(string(models.MovementIssuance), account.Identity, initialBalance).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert movement query: %w", err)
			}

			if _, err := tx.Exec(ctx, movementSQL, args...); err != nil {
				return fmt.Errorf("error recording issuance: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyRegistered) {
			logger.Error().Err(err).Str("identity", account.Identity).Msg("Error registering account")
		}
		return err
	}

	return nil
}

// GetByIdentity retrieves an account by its identity key
func (r *AccountRepository) GetByIdentity(ctx context.Context, identity string) (*models.Account, error) {
	sql, args, err := r.sb.Select("identity", "display_name", "role", "password_hash", "registered_at").
		From("accounts").
		Where(squirrel.Eq{"identity": identity}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	account := &models.Account{}
	var role string
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&account.Identity, &account.DisplayName, &role, &account.PasswordHash, &account.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotRegistered
		}
		logger.Error().Err(err).Str("identity", identity).Msg("Error scanning account row")
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}
	account.RoleType = models.RoleType(role)

	return account, nil
}

// ListByRole returns all accounts with the given role in registration order
func (r *AccountRepository) ListByRole(ctx context.Context, roleType models.RoleType) ([]*models.Account, error) {
	sql, args, err := r.sb.Select("identity", "display_name", "role", "password_hash", "registered_at").
		From("accounts").
		Where(squirrel.Eq{"role": string(roleType)}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("role", string(roleType)).Msg("Error listing accounts")
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		var role string
		if err := rows.Scan(&account.Identity, &account.DisplayName, &role,
			&account.PasswordHash, &account.RegisteredAt); err != nil {
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		account.RoleType = models.RoleType(role)
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

// ExistsWithRole reports whether an identity is registered with the given role
func (r *AccountRepository) ExistsWithRole(ctx context.Context, identity string, roleType models.RoleType) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE identity = $1 AND role = $2)`
	if err := r.db.QueryRow(ctx, query, identity, string(roleType)).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking account existence: %w", err)
	}
	return exists, nil
}
