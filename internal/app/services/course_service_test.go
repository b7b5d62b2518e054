package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/pricing"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

// setupCourseEnv seeds two universities with supply, a professor for each,
// one student holding 30 credits from uni-a, and one 6-credit course graded
// by prof-x at uni-a.
func setupCourseEnv(t *testing.T, store *memStore) (*TokenService, *CourseService, *models.CourseOffering) {
	t.Helper()
	_, tokenSvc, courseSvc := testServices(store, 100)

	seedAccount(t, store, "uni-a", models.RoleUniversity, 1_000_000)
	seedAccount(t, store, "uni-b", models.RoleUniversity, 1_000_000)
	seedAccount(t, store, "prof-x", models.RoleProfessor, 0)
	seedAccount(t, store, "prof-y", models.RoleProfessor, 0)
	seedAccount(t, store, "alice", models.RoleStudent, 0)

	course, err := courseSvc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Name:        "Distributed Systems",
		Symbol:      "DS",
		BaseCredits: 6,
	})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}

	_, err = courseSvc.AuthorizeProfessor(context.Background(), course.ID, &dto.AuthorizeProfessorRequest{
		UniversityIdentity: "uni-a",
		ProfessorIdentity:  "prof-x",
	})
	if err != nil {
		t.Fatalf("AuthorizeProfessor() error = %v", err)
	}

	_, err = tokenSvc.Purchase(context.Background(), "alice", &dto.PurchaseRequest{
		UniversityIdentity: "uni-a",
		Credits:            30,
		Payment:            2_040_000_000_000_000_000,
	})
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}

	return tokenSvc, courseSvc, course
}

func enroll(t *testing.T, courseSvc *CourseService, courseID int64) *models.EnrollmentRecord {
	t.Helper()
	rec, err := courseSvc.Enroll(context.Background(), "alice", courseID, &dto.EnrollRequest{
		UniversityIdentity: "uni-a",
		AcademicYear:       "2026-2027",
	})
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	return rec
}

func TestEnrollSpendsProvenanceAndMintsRecord(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)

	supplyBefore := store.totalSupply()
	rec := enroll(t, courseSvc, course.ID)

	if rec.RecordID != 1 {
		t.Errorf("RecordID = %d, want 1", rec.RecordID)
	}
	if rec.OwnerIdentity != "uni-a" {
		t.Errorf("owner = %s, want uni-a", rec.OwnerIdentity)
	}
	if rec.Status != models.StatusEnrolled {
		t.Errorf("status = %s, want ENROLLED", rec.Status)
	}

	// 6 base credits, no surcharge: 60000 units.
	if got := store.balances["alice"]; got != 240_000 {
		t.Errorf("student balance = %d, want 240000", got)
	}
	if got := store.provenance["alice"]["uni-a"]; got != 240_000 {
		t.Errorf("provenance balance = %d, want 240000", got)
	}
	if got := store.totalSupply(); got != supplyBefore {
		t.Errorf("total supply changed: %d -> %d", supplyBefore, got)
	}

	count, err := courseSvc.RecordCount(context.Background(), course.ID, "uni-a")
	if err != nil {
		t.Fatalf("RecordCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("university record count = %d, want 1", count)
	}
}

func TestEnrollAssignsSequentialRecordIDs(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)

	first := enroll(t, courseSvc, course.ID)
	second := enroll(t, courseSvc, course.ID)

	if first.RecordID != 1 || second.RecordID != 2 {
		t.Errorf("record IDs = %d, %d, want 1, 2", first.RecordID, second.RecordID)
	}
}

func TestEnrollWithoutAuthorization(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)

	_, err := courseSvc.Enroll(context.Background(), "alice", course.ID, &dto.EnrollRequest{
		UniversityIdentity: "uni-b",
		AcademicYear:       "2026-2027",
	})
	if !errors.Is(err, apperrors.ErrNoProfessorAssigned) {
		t.Fatalf("Enroll() error = %v, want ErrNoProfessorAssigned", err)
	}
}

func TestEnrollProvenanceScoping(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)

	// uni-b can grade too, but alice only holds tokens issued by uni-a. Her
	// total balance is irrelevant: spending is scoped to the issuing
	// university.
	_, err := courseSvc.AuthorizeProfessor(context.Background(), course.ID, &dto.AuthorizeProfessorRequest{
		UniversityIdentity: "uni-b",
		ProfessorIdentity:  "prof-y",
	})
	if err != nil {
		t.Fatalf("AuthorizeProfessor() error = %v", err)
	}

	_, err = courseSvc.Enroll(context.Background(), "alice", course.ID, &dto.EnrollRequest{
		UniversityIdentity: "uni-b",
		AcademicYear:       "2026-2027",
	})
	if !errors.Is(err, apperrors.ErrInsufficientProvenanceBalance) {
		t.Fatalf("Enroll() error = %v, want ErrInsufficientProvenanceBalance", err)
	}
	if got := store.balances["alice"]; got != 300_000 {
		t.Errorf("student balance = %d, want 300000", got)
	}
}

func TestRepetitionSurcharge(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)

	quote, err := courseSvc.QuoteCost(context.Background(), course.ID, "alice")
	if err != nil {
		t.Fatalf("QuoteCost() error = %v", err)
	}
	if quote.TokenCost != 60_000 {
		t.Errorf("first quote = %d, want 60000", quote.TokenCost)
	}

	enroll(t, courseSvc, course.ID)

	quote, err = courseSvc.QuoteCost(context.Background(), course.ID, "alice")
	if err != nil {
		t.Fatalf("QuoteCost() error = %v", err)
	}
	if quote.PriorAttempts != 1 {
		t.Errorf("prior attempts = %d, want 1", quote.PriorAttempts)
	}
	if quote.TokenCost != 120_000 {
		t.Errorf("second quote = %d, want 120000", quote.TokenCost)
	}

	enroll(t, courseSvc, course.ID)
	// 60000 + 120000 spent from the initial 300000.
	if got := store.balances["alice"]; got != 120_000 {
		t.Errorf("student balance = %d, want 120000", got)
	}
}

func TestEnrollPricesAttemptsAtWriteTime(t *testing.T) {
	store := newMemStore()
	_, _, course := setupCourseEnv(t, store)

	// The cost function must run inside the enrollment write, against the
	// attempt count the store sees at that moment. A count read before the
	// write would let two back-to-back enrollments both price as a first
	// attempt.
	var pricedAttempts []int64
	recording := func(experimentalFactor, priorAttempts, baseCredits int64) (int64, error) {
		pricedAttempts = append(pricedAttempts, priorAttempts)
		return pricing.DefaultCourseTokenCost(experimentalFactor, priorAttempts, baseCredits)
	}
	courseSvc := NewCourseService(store, fakeCourses{store}, store, recording, zerolog.Nop())

	enroll(t, courseSvc, course.ID)
	enroll(t, courseSvc, course.ID)

	if !reflect.DeepEqual(pricedAttempts, []int64{0, 1}) {
		t.Errorf("priced attempt counts = %v, want [0 1]", pricedAttempts)
	}
	if got := store.balances["alice"]; got != 120_000 {
		t.Errorf("student balance = %d, want 120000 after surcharged repeat", got)
	}
}

func TestEvaluatePassTransfersOwnership(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	evaluated, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           700,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if evaluated.Status != models.StatusEvaluatedPassed {
		t.Errorf("status = %s, want EVALUATED_PASSED", evaluated.Status)
	}
	if evaluated.OwnerIdentity != "alice" {
		t.Errorf("owner = %s, want alice", evaluated.OwnerIdentity)
	}

	studentCount, _ := courseSvc.RecordCount(context.Background(), course.ID, "alice")
	universityCount, _ := courseSvc.RecordCount(context.Background(), course.ID, "uni-a")
	if studentCount != 1 || universityCount != 0 {
		t.Errorf("record counts student=%d university=%d, want 1 and 0", studentCount, universityCount)
	}

	// Reading the record twice without a mutation in between must return
	// identical values.
	first, err := courseSvc.GetRecord(context.Background(), course.ID, rec.RecordID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	second, err := courseSvc.GetRecord(context.Background(), course.ID, rec.RecordID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated GetRecord() differs: %+v vs %+v", first, second)
	}
}

func TestEvaluateFailKeepsUniversityOwnership(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	evaluated, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           400,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if evaluated.Status != models.StatusEvaluatedFailed {
		t.Errorf("status = %s, want EVALUATED_FAILED", evaluated.Status)
	}
	if evaluated.OwnerIdentity != "uni-a" {
		t.Errorf("owner = %s, want uni-a", evaluated.OwnerIdentity)
	}
}

func TestEvaluateThresholdPasses(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	evaluated, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           500,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if evaluated.Status != models.StatusEvaluatedPassed {
		t.Errorf("grade 500: status = %s, want EVALUATED_PASSED", evaluated.Status)
	}
}

func TestEvaluateByWrongProfessor(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	_, err := courseSvc.Evaluate(context.Background(), "prof-y", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           700,
	})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("Evaluate() error = %v, want ErrUnauthorized", err)
	}
}

func TestEvaluateTwice(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	req := &dto.EvaluateRequest{StudentIdentity: "alice", Grade: 700}
	if _, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, req); err != nil {
		t.Fatalf("first Evaluate() error = %v", err)
	}

	_, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           100,
	})
	if !errors.Is(err, apperrors.ErrAlreadyEvaluated) {
		t.Fatalf("second Evaluate() error = %v, want ErrAlreadyEvaluated", err)
	}

	// The stored grade must be the first one.
	stored, err := courseSvc.GetRecord(context.Background(), course.ID, rec.RecordID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if stored.Grade == nil || *stored.Grade != 700 {
		t.Errorf("stored grade = %v, want 700", stored.Grade)
	}
}

func TestEvaluateStudentMismatch(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	_, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "bob",
		Grade:           700,
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("Evaluate() error = %v, want ErrValidationFailed", err)
	}
}

func TestRelocatePassedRecord(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	_, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           800,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	relocated, err := courseSvc.Relocate(context.Background(), "alice", course.ID, rec.RecordID, &dto.RelocateRequest{
		NewUniversityIdentity: "uni-b",
	})
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}

	if relocated.OwnerIdentity != "uni-b" || relocated.UniversityIdentity != "uni-b" {
		t.Errorf("owner=%s university=%s, want uni-b for both", relocated.OwnerIdentity, relocated.UniversityIdentity)
	}
}

func TestRelocateByNonOwner(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	_, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           800,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	_, err = courseSvc.Relocate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.RelocateRequest{
		NewUniversityIdentity: "uni-b",
	})
	if !errors.Is(err, apperrors.ErrNotOwner) {
		t.Fatalf("Relocate() error = %v, want ErrNotOwner", err)
	}
}

func TestRelocateUngradedRecord(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	// Ungraded records belong to the university, so the student is simply
	// not the owner yet.
	_, err := courseSvc.Relocate(context.Background(), "alice", course.ID, rec.RecordID, &dto.RelocateRequest{
		NewUniversityIdentity: "uni-b",
	})
	if !errors.Is(err, apperrors.ErrNotOwner) {
		t.Fatalf("Relocate() error = %v, want ErrNotOwner", err)
	}
}

func TestRelocateToUnknownUniversity(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)
	rec := enroll(t, courseSvc, course.ID)

	_, err := courseSvc.Evaluate(context.Background(), "prof-x", course.ID, rec.RecordID, &dto.EvaluateRequest{
		StudentIdentity: "alice",
		Grade:           800,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	_, err = courseSvc.Relocate(context.Background(), "alice", course.ID, rec.RecordID, &dto.RelocateRequest{
		NewUniversityIdentity: "ghost-university",
	})
	if !errors.Is(err, apperrors.ErrNotRegistered) {
		t.Fatalf("Relocate() error = %v, want ErrNotRegistered", err)
	}
}

func TestCreateCourseDuplicateSymbol(t *testing.T) {
	store := newMemStore()
	_, _, courseSvc := testServices(store, 100)

	req := &dto.CreateCourseRequest{Name: "Algorithms", Symbol: "ALG", BaseCredits: 6}
	if _, err := courseSvc.CreateCourse(context.Background(), req); err != nil {
		t.Fatalf("first CreateCourse() error = %v", err)
	}
	if _, err := courseSvc.CreateCourse(context.Background(), req); !errors.Is(err, apperrors.ErrCourseAlreadyExists) {
		t.Fatalf("second CreateCourse() error = %v, want ErrCourseAlreadyExists", err)
	}
}

func TestAuthorizeUnknownProfessor(t *testing.T) {
	store := newMemStore()
	_, _, courseSvc := testServices(store, 100)
	seedAccount(t, store, "uni-a", models.RoleUniversity, 0)

	course, err := courseSvc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Name: "Algorithms", Symbol: "ALG", BaseCredits: 6,
	})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}

	_, err = courseSvc.AuthorizeProfessor(context.Background(), course.ID, &dto.AuthorizeProfessorRequest{
		UniversityIdentity: "uni-a",
		ProfessorIdentity:  "ghost-prof",
	})
	if !errors.Is(err, apperrors.ErrNotRegistered) {
		t.Fatalf("AuthorizeProfessor() error = %v, want ErrNotRegistered", err)
	}
}

func TestGetUnknownRecord(t *testing.T) {
	store := newMemStore()
	_, courseSvc, course := setupCourseEnv(t, store)

	if _, err := courseSvc.GetRecord(context.Background(), course.ID, 99); !errors.Is(err, apperrors.ErrRecordNotFound) {
		t.Fatalf("GetRecord() error = %v, want ErrRecordNotFound", err)
	}
}

func TestExperimentalFactorSurcharge(t *testing.T) {
	store := newMemStore()
	_, _, courseSvc := testServices(store, 100)
	seedAccount(t, store, "alice", models.RoleStudent, 0)

	course, err := courseSvc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Name:               "Quantum Computing Lab",
		Symbol:             "QCL",
		BaseCredits:        4,
		ExperimentalFactor: 2,
	})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}

	quote, err := courseSvc.QuoteCost(context.Background(), course.ID, "alice")
	if err != nil {
		t.Fatalf("QuoteCost() error = %v", err)
	}
	// 4 credits x 150% = 60000 units.
	if quote.TokenCost != 60_000 {
		t.Errorf("quote = %d, want 60000", quote.TokenCost)
	}
}
