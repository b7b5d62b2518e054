package models

import (
	"fmt"
	"time"

	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

// EnrollmentStatus is the explicit state of an enrollment record.
type EnrollmentStatus string

const (
	// StatusEnrolled: record minted, not yet graded; owned by the university.
	StatusEnrolled EnrollmentStatus = "ENROLLED"
	// StatusEvaluatedFailed: graded below the passing threshold; terminal,
	// still owned by the university.
	StatusEvaluatedFailed EnrollmentStatus = "EVALUATED_FAILED"
	// StatusEvaluatedPassed: graded at or above the threshold; owned by the
	// student until relocated to another university.
	StatusEvaluatedPassed EnrollmentStatus = "EVALUATED_PASSED"
)

// EnrollmentRecord is the non-fungible record of one student's registration
// in one course offering for one academic year. Once passed it doubles as
// the diploma artifact.
type EnrollmentRecord struct {
	CourseID           int64            `json:"courseId" db:"course_id"`
	RecordID           int64            `json:"recordId" db:"record_id"`
	OwnerIdentity      string           `json:"ownerIdentity" db:"owner_identity"`
	StudentIdentity    string           `json:"studentIdentity" db:"student_identity"`
	UniversityIdentity string           `json:"universityIdentity" db:"university_identity"`
	AcademicYear       string           `json:"academicYear" db:"academic_year"`
	Grade              *int64           `json:"grade,omitempty" db:"grade"`
	Status             EnrollmentStatus `json:"status" db:"status"`
	CreatedAt          time.Time        `json:"createdAt" db:"created_at"`
}

// Evaluated reports whether the record has been graded.
func (r *EnrollmentRecord) Evaluated() bool {
	return r.Status != StatusEnrolled
}

// Passed reports whether the record holds a passing grade.
func (r *EnrollmentRecord) Passed() bool {
	return r.Status == StatusEvaluatedPassed
}

// Evaluate applies a grade to an ENROLLED record. A passing grade moves
// ownership from the university to the student. Any repeated call is
// rejected and leaves the record untouched.
func (r *EnrollmentRecord) Evaluate(grade int64) error {
	if grade < 0 || grade > MaxGrade {
		return fmt.Errorf("%w: grade must be between 0 and %d", apperrors.ErrValidationFailed, MaxGrade)
	}
	if r.Status != StatusEnrolled {
		return apperrors.ErrAlreadyEvaluated
	}
	r.Grade = &grade
	if grade >= PassingGrade {
		r.Status = StatusEvaluatedPassed
		r.OwnerIdentity = r.StudentIdentity
	} else {
		r.Status = StatusEvaluatedFailed
	}
	return nil
}

// Relocate moves a passed record, currently held by the student, to a new
// university. Both the owner and the issuing university change. Ungraded and
// failed records cannot relocate.
func (r *EnrollmentRecord) Relocate(caller, newUniversity string) error {
	if r.OwnerIdentity != caller {
		return apperrors.ErrNotOwner
	}
	if r.Status != StatusEvaluatedPassed || r.OwnerIdentity != r.StudentIdentity {
		return apperrors.ErrNotRelocatable
	}
	r.OwnerIdentity = newUniversity
	r.UniversityIdentity = newUniversity
	return nil
}
