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
	"github.com/opencampus/credisphere/internal/app/pricing"
	"github.com/opencampus/credisphere/internal/db"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/logger"
)

// EnrollmentRepository handles enrollment record database operations
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateEnrollment prices and mints an enrollment in one transaction. The
// course counter UPDATE ... RETURNING runs first so concurrent enrollments
// of the same course serialize on its row; the attempt count feeding costFn
// is then read under that lock, the spend is guarded, and the payment is
// journaled. The record pointer is filled in and the charged cost returned
// on success.
func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, rec *models.EnrollmentRecord, course *models.CourseOffering, costFn pricing.CostFn) (int64, error) {
	var cost int64
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var nextID int64
		counterSQL := `UPDATE course_offerings SET next_record_id = next_record_id + 1
			WHERE id = $1 RETURNING next_record_id`
		if err := tx.QueryRow(ctx, counterSQL, rec.CourseID).Scan(&nextID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrCourseNotFound
			}
			return fmt.Errorf("error advancing record counter: %w", err)
		}

		var attempts int64
		attemptsSQL := `SELECT COUNT(*) FROM enrollment_records WHERE course_id = $1 AND student_identity = $2`
		if err := tx.QueryRow(ctx, attemptsSQL, rec.CourseID, rec.StudentIdentity).Scan(&attempts); err != nil {
			return fmt.Errorf("error counting attempts: %w", err)
		}

		var err error
		cost, err = costFn(course.ExperimentalFactor, attempts, course.BaseCredits)
		if err != nil {
			return err
		}

		provenanceSQL := `UPDATE provenance_balances SET balance = balance - $1
			WHERE student_identity = $2 AND university_identity = $3 AND balance >= $1`
		cmdTag, err := tx.Exec(ctx, provenanceSQL, cost, rec.StudentIdentity, rec.UniversityIdentity)
		if err != nil {
			return fmt.Errorf("error debiting provenance balance: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrInsufficientProvenanceBalance
		}

		debitSQL := `UPDATE credit_balances SET balance = balance - $1
			WHERE identity = $2 AND balance >= $1`
		cmdTag, err = tx.Exec(ctx, debitSQL, cost, rec.StudentIdentity)
		if err != nil {
			return fmt.Errorf("error debiting student balance: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrInsufficientBalance
		}

		creditSQL := `UPDATE credit_balances SET balance = balance + $1 WHERE identity = $2`
		if _, err := tx.Exec(ctx, creditSQL, cost, rec.UniversityIdentity); err != nil {
			return fmt.Errorf("error crediting university balance: %w", err)
		}

		rec.RecordID = nextID - 1
		rec.Status = models.StatusEnrolled
		rec.CreatedAt = time.Now()

		insertSQL, args, err := r.sb.Insert("enrollment_records").
			Columns("course_id", "record_id", "owner_identity", "student_identity",
				"university_identity", "academic_year", "status", "created_at").
			Values(rec.CourseID, rec.RecordID, rec.OwnerIdentity, rec.StudentIdentity,
				rec.UniversityIdentity, rec.AcademicYear, string(rec.Status), rec.CreatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert record query: %w", err)
		}
		if _, err := tx.Exec(ctx, insertSQL, args...); err != nil {
			return fmt.Errorf("error creating enrollment record: %w", err)
		}

		movementSQL, args, err := r.sb.Insert("token_movements").
			Columns("kind", "from_identity", "to_identity", "amount", "course_id").
			Values(string(models.MovementEnrollment), rec.StudentIdentity, rec.UniversityIdentity, cost, rec.CourseID).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert movement query: %w", err)
		}
		if _, err := tx.Exec(ctx, movementSQL, args...); err != nil {
			return fmt.Errorf("error recording enrollment movement: %w", err)
		}

		return nil
	})

	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientProvenanceBalance) &&
			!errors.Is(err, apperrors.ErrInsufficientBalance) &&
			!errors.Is(err, apperrors.ErrCourseNotFound) &&
			!errors.Is(err, apperrors.ErrArithmeticOverflow) {
			logger.Error().Err(err).
				Int64("courseID", rec.CourseID).
				Str("student", rec.StudentIdentity).
				Msg("Error creating enrollment")
		}
		return 0, err
	}

	return cost, nil
}

// GetRecord retrieves one enrollment record of a course
func (r *EnrollmentRepository) GetRecord(ctx context.Context, courseID, recordID int64) (*models.EnrollmentRecord, error) {
	sql, args, err := r.sb.Select("course_id", "record_id", "owner_identity", "student_identity",
		"university_identity", "academic_year", "grade", "status", "created_at").
		From("enrollment_records").
		Where(squirrel.Eq{"course_id": courseID, "record_id": recordID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get record query: %w", err)
	}

	rec := &models.EnrollmentRecord{}
	var status string
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rec.CourseID, &rec.RecordID, &rec.OwnerIdentity, &rec.StudentIdentity,
		&rec.UniversityIdentity, &rec.AcademicYear, &rec.Grade, &status, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRecordNotFound
		}
		logger.Error().Err(err).Int64("courseID", courseID).Int64("recordID", recordID).Msg("Error scanning record row")
		return nil, fmt.Errorf("error retrieving record: %w", err)
	}
	rec.Status = models.EnrollmentStatus(status)

	return rec, nil
}

// ListRecords returns all enrollment records of a course in record order
func (r *EnrollmentRepository) ListRecords(ctx context.Context, courseID int64) ([]*models.EnrollmentRecord, error) {
	sql, args, err := r.sb.Select("course_id", "record_id", "owner_identity", "student_identity",
		"university_identity", "academic_year", "grade", "status", "created_at").
		From("enrollment_records").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("record_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list records query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error listing records")
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	defer rows.Close()

	var records []*models.EnrollmentRecord
	for rows.Next() {
		rec := &models.EnrollmentRecord{}
		var status string
		if err := rows.Scan(&rec.CourseID, &rec.RecordID, &rec.OwnerIdentity, &rec.StudentIdentity,
			&rec.UniversityIdentity, &rec.AcademicYear, &rec.Grade, &status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning record row: %w", err)
		}
		rec.Status = models.EnrollmentStatus(status)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	return records, nil
}

// UpdateEvaluation persists a grading outcome. The status guard makes the
// write first-evaluation-wins: a record graded by a concurrent request
// surfaces as ErrAlreadyEvaluated instead of being overwritten.
func (r *EnrollmentRepository) UpdateEvaluation(ctx context.Context, rec *models.EnrollmentRecord) error {
	sql := `UPDATE enrollment_records
		SET grade = $1, status = $2, owner_identity = $3
		WHERE course_id = $4 AND record_id = $5 AND status = $6`

	cmdTag, err := r.db.Exec(ctx, sql,
		rec.Grade, string(rec.Status), rec.OwnerIdentity,
		rec.CourseID, rec.RecordID, string(models.StatusEnrolled))
	if err != nil {
		logger.Error().Err(err).Int64("courseID", rec.CourseID).Int64("recordID", rec.RecordID).Msg("Error updating evaluation")
		return fmt.Errorf("error updating evaluation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyEvaluated
	}

	return nil
}

// UpdateRelocation moves a passed record to its new university. The write is
// guarded on the expected owner so a stale caller cannot move a record that
// changed hands in between.
func (r *EnrollmentRepository) UpdateRelocation(ctx context.Context, rec *models.EnrollmentRecord, expectedOwner string) error {
	sql := `UPDATE enrollment_records
		SET owner_identity = $1, university_identity = $2
		WHERE course_id = $3 AND record_id = $4 AND owner_identity = $5 AND status = $6`

	cmdTag, err := r.db.Exec(ctx, sql,
		rec.OwnerIdentity, rec.UniversityIdentity,
		rec.CourseID, rec.RecordID, expectedOwner, string(models.StatusEvaluatedPassed))
	if err != nil {
		logger.Error().Err(err).Int64("courseID", rec.CourseID).Int64("recordID", rec.RecordID).Msg("Error updating relocation")
		return fmt.Errorf("error updating relocation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotOwner
	}

	return nil
}

// CountOwnedBy returns how many records of a course an identity currently owns
func (r *EnrollmentRepository) CountOwnedBy(ctx context.Context, courseID int64, identity string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM enrollment_records WHERE course_id = $1 AND owner_identity = $2`
	if err := r.db.QueryRow(ctx, query, courseID, identity).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting owned records: %w", err)
	}
	return count, nil
}

// CountAttempts returns how many times a student has enrolled in a course,
// counting the current enrollment and any evaluated ones.
func (r *EnrollmentRepository) CountAttempts(ctx context.Context, courseID int64, studentIdentity string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM enrollment_records WHERE course_id = $1 AND student_identity = $2`
	if err := r.db.QueryRow(ctx, query, courseID, studentIdentity).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting attempts: %w", err)
	}
	return count, nil
}
