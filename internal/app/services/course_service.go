package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/pricing"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

// CourseService handles course offerings, teaching authorizations and the
// enrollment lifecycle.
type CourseService struct {
	accounts    AccountStore
	courses     CourseStore
	enrollments EnrollmentStore
	costFn      pricing.CostFn
	logger      zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(accounts AccountStore, courses CourseStore, enrollments EnrollmentStore, costFn pricing.CostFn, logger zerolog.Logger) *CourseService {
	return &CourseService{
		accounts:    accounts,
		courses:     courses,
		enrollments: enrollments,
		costFn:      costFn,
		logger:      logger,
	}
}

// CreateCourse creates a new course offering
func (s *CourseService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.CourseOffering, error) {
	name := strings.TrimSpace(req.Name)
	symbol := strings.TrimSpace(req.Symbol)
	if name == "" || symbol == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "course name and symbol cannot be empty")
	}

	course := &models.CourseOffering{
		Name:               name,
		Symbol:             symbol,
		BaseCredits:        req.BaseCredits,
		ExperimentalFactor: req.ExperimentalFactor,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", course.ID).
		Str("symbol", course.Symbol).
		Msg("Course offering created")

	return course, nil
}

// GetCourse retrieves one course offering
func (s *CourseService) GetCourse(ctx context.Context, courseID int64) (*models.CourseOffering, error) {
	return s.courses.GetByID(ctx, courseID)
}

// ListCourses returns all course offerings
func (s *CourseService) ListCourses(ctx context.Context) ([]*models.CourseOffering, error) {
	return s.courses.GetAll(ctx)
}

// QuoteCost computes the token cost a student would pay to enroll now,
// including the repetition surcharge from their prior attempts.
func (s *CourseService) QuoteCost(ctx context.Context, courseID int64, studentIdentity string) (*dto.CourseCostResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.enrollments.CountAttempts(ctx, courseID, studentIdentity)
	if err != nil {
		return nil, err
	}

	cost, err := s.costFn(course.ExperimentalFactor, attempts, course.BaseCredits)
	if err != nil {
		return nil, err
	}

	return &dto.CourseCostResponse{
		CourseID:      courseID,
		StudentID:     studentIdentity,
		PriorAttempts: attempts,
		TokenCost:     cost,
	}, nil
}

// AuthorizeProfessor assigns a professor to teach a course at a university.
// Re-assigning the pair replaces the previous professor.
func (s *CourseService) AuthorizeProfessor(ctx context.Context, courseID int64, req *dto.AuthorizeProfessorRequest) (*models.TeachingAuthorization, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	isUniversity, err := s.accounts.ExistsWithRole(ctx, req.UniversityIdentity, models.RoleUniversity)
	if err != nil {
		return nil, err
	}
	if !isUniversity {
		return nil, apperrors.ErrNotRegistered
	}

	isProfessor, err := s.accounts.ExistsWithRole(ctx, req.ProfessorIdentity, models.RoleProfessor)
	if err != nil {
		return nil, err
	}
	if !isProfessor {
		return nil, apperrors.ErrNotRegistered
	}

	auth := &models.TeachingAuthorization{
		CourseID:           courseID,
		UniversityIdentity: req.UniversityIdentity,
		ProfessorIdentity:  req.ProfessorIdentity,
	}

	if err := s.courses.SetAuthorization(ctx, auth); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Str("university", req.UniversityIdentity).
		Str("professor", req.ProfessorIdentity).
		Msg("Teaching authorization set")

	return auth, nil
}

// GetAuthorization returns the professor assigned to a course at a university
func (s *CourseService) GetAuthorization(ctx context.Context, courseID int64, universityIdentity string) (*models.TeachingAuthorization, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.courses.GetAuthorization(ctx, courseID, universityIdentity)
}

// Enroll enrolls the calling student in a course at a university. The cost
// is spent from the student's holding tagged with that university, and the
// new record starts out owned by the university.
func (s *CourseService) Enroll(ctx context.Context, callerIdentity string, courseID int64, req *dto.EnrollRequest) (*models.EnrollmentRecord, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

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

	// A course with nobody to grade it cannot take enrollments.
	if _, err := s.courses.GetAuthorization(ctx, courseID, req.UniversityIdentity); err != nil {
		return nil, err
	}

	rec := &models.EnrollmentRecord{
		CourseID:           courseID,
		OwnerIdentity:      req.UniversityIdentity,
		StudentIdentity:    callerIdentity,
		UniversityIdentity: req.UniversityIdentity,
		AcademicYear:       req.AcademicYear,
	}

	// Pricing happens inside the store transaction so the repetition
	// surcharge is based on the attempt count at commit time.
	cost, err := s.enrollments.CreateEnrollment(ctx, rec, course, s.costFn)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("recordID", rec.RecordID).
		Str("student", callerIdentity).
		Str("university", req.UniversityIdentity).
		Int64("cost", cost).
		Msg("Student enrolled")

	return rec, nil
}

// Evaluate grades an enrollment record. Only the professor assigned to the
// record's university may grade it, and only once; a passing grade hands
// record ownership to the student.
func (s *CourseService) Evaluate(ctx context.Context, callerIdentity string, courseID, recordID int64, req *dto.EvaluateRequest) (*models.EnrollmentRecord, error) {
	rec, err := s.enrollments.GetRecord(ctx, courseID, recordID)
	if err != nil {
		return nil, err
	}

	auth, err := s.courses.GetAuthorization(ctx, courseID, rec.UniversityIdentity)
	if err != nil {
		return nil, err
	}
	if auth.ProfessorIdentity != callerIdentity {
		return nil, apperrors.ErrUnauthorized
	}

	if req.StudentIdentity != rec.StudentIdentity {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			"student identity does not match the enrollment record")
	}

	if err := rec.Evaluate(req.Grade); err != nil {
		return nil, err
	}

	if err := s.enrollments.UpdateEvaluation(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("recordID", recordID).
		Str("student", rec.StudentIdentity).
		Str("status", string(rec.Status)).
		Msg("Enrollment evaluated")

	return rec, nil
}

// Relocate moves a passed record, owned by its student, to another
// university.
func (s *CourseService) Relocate(ctx context.Context, callerIdentity string, courseID, recordID int64, req *dto.RelocateRequest) (*models.EnrollmentRecord, error) {
	rec, err := s.enrollments.GetRecord(ctx, courseID, recordID)
	if err != nil {
		return nil, err
	}

	isUniversity, err := s.accounts.ExistsWithRole(ctx, req.NewUniversityIdentity, models.RoleUniversity)
	if err != nil {
		return nil, err
	}
	if !isUniversity {
		return nil, apperrors.ErrNotRegistered
	}

	expectedOwner := rec.OwnerIdentity
	if err := rec.Relocate(callerIdentity, req.NewUniversityIdentity); err != nil {
		return nil, err
	}

	if err := s.enrollments.UpdateRelocation(ctx, rec, expectedOwner); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("recordID", recordID).
		Str("newUniversity", req.NewUniversityIdentity).
		Msg("Enrollment record relocated")

	return rec, nil
}

// GetRecord retrieves one enrollment record of a course
func (s *CourseService) GetRecord(ctx context.Context, courseID, recordID int64) (*models.EnrollmentRecord, error) {
	return s.enrollments.GetRecord(ctx, courseID, recordID)
}

// ListRecords returns all enrollment records of a course
func (s *CourseService) ListRecords(ctx context.Context, courseID int64) ([]*models.EnrollmentRecord, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.enrollments.ListRecords(ctx, courseID)
}

// RecordCount returns how many records of a course an identity owns
func (s *CourseService) RecordCount(ctx context.Context, courseID int64, identity string) (int64, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return 0, err
	}
	return s.enrollments.CountOwnedBy(ctx, courseID, identity)
}
