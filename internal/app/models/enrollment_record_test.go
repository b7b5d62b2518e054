package models

import (
	"errors"
	"testing"

	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

func newEnrolledRecord() *EnrollmentRecord {
	return &EnrollmentRecord{
		CourseID:           1,
		RecordID:           1,
		OwnerIdentity:      "uni-a",
		StudentIdentity:    "student-1",
		UniversityIdentity: "uni-a",
		AcademicYear:       "2025-2026",
		Status:             StatusEnrolled,
	}
}

func TestEvaluateFailingGrade(t *testing.T) {
	rec := newEnrolledRecord()
	if err := rec.Evaluate(400); err != nil {
		t.Fatalf("Evaluate(400) error: %v", err)
	}
	if rec.Status != StatusEvaluatedFailed {
		t.Fatalf("status = %s, want %s", rec.Status, StatusEvaluatedFailed)
	}
	if !rec.Evaluated() || rec.Passed() {
		t.Fatalf("evaluated=%v passed=%v, want evaluated and not passed", rec.Evaluated(), rec.Passed())
	}
	if rec.OwnerIdentity != "uni-a" {
		t.Fatalf("failed record must stay with the university, owner = %s", rec.OwnerIdentity)
	}
	if rec.Grade == nil || *rec.Grade != 400 {
		t.Fatalf("grade not recorded: %v", rec.Grade)
	}
}

func TestEvaluatePassingGradeTransfersOwnership(t *testing.T) {
	rec := newEnrolledRecord()
	if err := rec.Evaluate(700); err != nil {
		t.Fatalf("Evaluate(700) error: %v", err)
	}
	if rec.Status != StatusEvaluatedPassed {
		t.Fatalf("status = %s, want %s", rec.Status, StatusEvaluatedPassed)
	}
	if rec.OwnerIdentity != "student-1" {
		t.Fatalf("passed record must move to the student, owner = %s", rec.OwnerIdentity)
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	atThreshold := newEnrolledRecord()
	if err := atThreshold.Evaluate(PassingGrade); err != nil {
		t.Fatal(err)
	}
	if !atThreshold.Passed() {
		t.Fatalf("grade %d should pass", PassingGrade)
	}

	belowThreshold := newEnrolledRecord()
	if err := belowThreshold.Evaluate(PassingGrade - 1); err != nil {
		t.Fatal(err)
	}
	if belowThreshold.Passed() {
		t.Fatalf("grade %d should fail", PassingGrade-1)
	}
}

func TestEvaluateTwiceRejected(t *testing.T) {
	rec := newEnrolledRecord()
	if err := rec.Evaluate(700); err != nil {
		t.Fatal(err)
	}
	err := rec.Evaluate(100)
	if !errors.Is(err, apperrors.ErrAlreadyEvaluated) {
		t.Fatalf("second Evaluate error = %v, want ErrAlreadyEvaluated", err)
	}
	if *rec.Grade != 700 || rec.Status != StatusEvaluatedPassed {
		t.Fatalf("rejected evaluation must leave the record unchanged: grade=%d status=%s", *rec.Grade, rec.Status)
	}
}

func TestEvaluateGradeOutOfRange(t *testing.T) {
	for _, grade := range []int64{-1, MaxGrade + 1} {
		rec := newEnrolledRecord()
		if err := rec.Evaluate(grade); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("Evaluate(%d) error = %v, want ErrValidationFailed", grade, err)
		}
		if rec.Evaluated() {
			t.Fatalf("rejected grade %d must not change the status", grade)
		}
	}
}

func TestRelocatePassedRecord(t *testing.T) {
	rec := newEnrolledRecord()
	if err := rec.Evaluate(700); err != nil {
		t.Fatal(err)
	}
	if err := rec.Relocate("student-1", "uni-c"); err != nil {
		t.Fatalf("Relocate error: %v", err)
	}
	if rec.OwnerIdentity != "uni-c" || rec.UniversityIdentity != "uni-c" {
		t.Fatalf("relocation must move owner and university: owner=%s university=%s",
			rec.OwnerIdentity, rec.UniversityIdentity)
	}
}

func TestRelocateByNonOwnerRejected(t *testing.T) {
	rec := newEnrolledRecord()
	if err := rec.Evaluate(700); err != nil {
		t.Fatal(err)
	}
	if err := rec.Relocate("someone-else", "uni-c"); !errors.Is(err, apperrors.ErrNotOwner) {
		t.Fatalf("error = %v, want ErrNotOwner", err)
	}
}

func TestRelocateUngradedRejected(t *testing.T) {
	rec := newEnrolledRecord()
	// Owner is still the university; the university itself may not relocate
	// an ungraded record either.
	if err := rec.Relocate("uni-a", "uni-c"); !errors.Is(err, apperrors.ErrNotRelocatable) {
		t.Fatalf("error = %v, want ErrNotRelocatable", err)
	}
}

func TestRelocateFailedRejected(t *testing.T) {
	rec := newEnrolledRecord()
	if err := rec.Evaluate(400); err != nil {
		t.Fatal(err)
	}
	if err := rec.Relocate("uni-a", "uni-c"); !errors.Is(err, apperrors.ErrNotRelocatable) {
		t.Fatalf("error = %v, want ErrNotRelocatable", err)
	}
}
