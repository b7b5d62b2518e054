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
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
	"github.com/opencampus/credisphere/internal/pkg/dberrors"
	"github.com/opencampus/credisphere/internal/pkg/logger"
)

// CourseRepository handles course offering database operations
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new course offering and fills in its assigned ID
func (r *CourseRepository) Create(ctx context.Context, course *models.CourseOffering) error {
	sql, args, err := r.sb.Insert("course_offerings").
		Columns("name", "symbol", "base_credits", "experimental_factor", "created_at").
		Values(course.Name, course.Symbol, course.BaseCredits, course.ExperimentalFactor, time.Now()).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert course query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "course_offerings_symbol_key") {
			return apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Str("symbol", course.Symbol).Msg("Error creating course offering")
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// GetByID retrieves a course offering by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.CourseOffering, error) {
	sql, args, err := r.sb.Select("id", "name", "symbol", "base_credits", "experimental_factor", "next_record_id", "created_at").
		From("course_offerings").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course := &models.CourseOffering{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&course.ID, &course.Name, &course.Symbol, &course.BaseCredits,
		&course.ExperimentalFactor, &course.NextRecordID, &course.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	return course, nil
}

// GetAll returns every course offering in creation order
func (r *CourseRepository) GetAll(ctx context.Context) ([]*models.CourseOffering, error) {
	sql, args, err := r.sb.Select("id", "name", "symbol", "base_credits", "experimental_factor", "next_record_id", "created_at").
		From("course_offerings").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing courses")
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.CourseOffering
	for rows.Next() {
		course := &models.CourseOffering{}
		if err := rows.Scan(&course.ID, &course.Name, &course.Symbol, &course.BaseCredits,
			&course.ExperimentalFactor, &course.NextRecordID, &course.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

// SetAuthorization assigns a professor to teach a course at a university,
// replacing any previous assignment for that pair.
func (r *CourseRepository) SetAuthorization(ctx context.Context, auth *models.TeachingAuthorization) error {
	sql := `INSERT INTO teaching_authorizations (course_id, university_identity, professor_identity)
		VALUES ($1, $2, $3)
		ON CONFLICT (course_id, university_identity)
		DO UPDATE SET professor_identity = $3`

	if _, err := r.db.Exec(ctx, sql, auth.CourseID, auth.UniversityIdentity, auth.ProfessorIdentity); err != nil {
		logger.Error().Err(err).
			Int64("courseID", auth.CourseID).
			Str("university", auth.UniversityIdentity).
			Msg("Error setting teaching authorization")
		return fmt.Errorf("error setting authorization: %w", err)
	}

	return nil
}

// GetAuthorization returns the professor assigned to a course at a university
func (r *CourseRepository) GetAuthorization(ctx context.Context, courseID int64, universityIdentity string) (*models.TeachingAuthorization, error) {
	sql, args, err := r.sb.Select("course_id", "university_identity", "professor_identity").
		From("teaching_authorizations").
		Where(squirrel.Eq{"course_id": courseID, "university_identity": universityIdentity}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get authorization query: %w", err)
	}

	auth := &models.TeachingAuthorization{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&auth.CourseID, &auth.UniversityIdentity, &auth.ProfessorIdentity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoProfessorAssigned
		}
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error scanning authorization row")
		return nil, fmt.Errorf("error retrieving authorization: %w", err)
	}

	return auth, nil
}
