package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/db"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/logger"
)

// LedgerRepository handles credit token balance operations. Every write runs
// in one transaction so total and provenance balances never drift apart.
type LedgerRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// TransferPurchase moves amount token units from a university's balance to a
// student, tagging the student's new holding with the university as its
// provenance. The debit is guarded: a university without enough balance
// leaves the ledger untouched.
func (r *LedgerRepository) TransferPurchase(ctx context.Context, studentIdentity, universityIdentity string, amount int64) error {
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		debitSQL := `UPDATE credit_balances SET balance = balance - $1
			WHERE identity = $2 AND balance >= $1`
		cmdTag, err := tx.Exec(ctx, debitSQL, amount, universityIdentity)
		if err != nil {
			return fmt.Errorf("error debiting university balance: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrInsufficientBalance
		}

		creditSQL := `INSERT INTO credit_balances (identity, balance) VALUES ($1, $2)
			ON CONFLICT (identity) DO UPDATE SET balance = credit_balances.balance + $2`
		if _, err := tx.Exec(ctx, creditSQL, studentIdentity, amount); err != nil {
			return fmt.Errorf("error crediting student balance: %w", err)
		}

		provenanceSQL := `INSERT INTO provenance_balances (student_identity, university_identity, balance)
			VALUES ($1, $2, $3)
			ON CONFLICT (student_identity, university_identity)
			DO UPDATE SET balance = provenance_balances.balance + $3`
		if _, err := tx.Exec(ctx, provenanceSQL, studentIdentity, universityIdentity, amount); err != nil {
			return fmt.Errorf("error crediting provenance balance: %w", err)
		}

		movementSQL, args, err := r.sb.Insert("token_movements").
			Columns("kind", "from_identity", "to_identity", "amount").
			Values(string(models.MovementPurchase), universityIdentity, studentIdentity, amount).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert movement query: %w", err)
		}
		if _, err := tx.Exec(ctx, movementSQL, args...); err != nil {
			return fmt.Errorf("error recording purchase movement: %w", err)
		}

		return nil
	})

	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientBalance) {
			logger.Error().Err(err).
				Str("student", studentIdentity).
				Str("university", universityIdentity).
				Int64("amount", amount).
				Msg("Error transferring purchased tokens")
		}
		return err
	}

	return nil
}

// BalanceOf returns the total token balance of an identity. Identities
// without a balance row hold zero.
func (r *LedgerRepository) BalanceOf(ctx context.Context, identity string) (int64, error) {
	sql, args, err := r.sb.Select("balance").
		From("credit_balances").
		Where(squirrel.Eq{"identity": identity}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build balance query: %w", err)
	}

	var balance int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		logger.Error().Err(err).Str("identity", identity).Msg("Error scanning balance row")
		return 0, fmt.Errorf("error retrieving balance: %w", err)
	}

	return balance, nil
}

// ProvenanceBalanceOf returns the sub-balance a student holds from one
// issuing university, zero when no row exists.
func (r *LedgerRepository) ProvenanceBalanceOf(ctx context.Context, studentIdentity, universityIdentity string) (int64, error) {
	sql, args, err := r.sb.Select("balance").
		From("provenance_balances").
		Where(squirrel.Eq{
			"student_identity":    studentIdentity,
			"university_identity": universityIdentity,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build provenance balance query: %w", err)
	}

	var balance int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		logger.Error().Err(err).
			Str("student", studentIdentity).
			Str("university", universityIdentity).
			Msg("Error scanning provenance balance row")
		return 0, fmt.Errorf("error retrieving provenance balance: %w", err)
	}

	return balance, nil
}

// MovementsOf returns the journal entries an identity took part in, newest
// first.
func (r *LedgerRepository) MovementsOf(ctx context.Context, identity string) ([]*models.TokenMovement, error) {
	sql, args, err := r.sb.Select("id", "kind", "from_identity", "to_identity", "amount", "course_id", "created_at").
		From("token_movements").
		Where(squirrel.Or{
			squirrel.Eq{"from_identity": identity},
			squirrel.Eq{"to_identity": identity},
		}).
		OrderBy("id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build movements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("identity", identity).Msg("Error listing movements")
		return nil, fmt.Errorf("error listing movements: %w", err)
	}
	defer rows.Close()

	var movements []*models.TokenMovement
	for rows.Next() {
		m := &models.TokenMovement{}
		var kind string
		var from *string
		if err := rows.Scan(&m.ID, &kind, &from, &m.ToIdentity, &m.Amount, &m.CourseID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning movement row: %w", err)
		}
		m.Kind = models.MovementKind(kind)
		if from != nil {
			m.FromIdentity = *from
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}

	return movements, nil
}
