package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/pricing"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

// testServices wires all services on top of one shared in-memory store.
func testServices(store *memStore, initialUniversityCredits int64) (*RegistryService, *TokenService, *CourseService) {
	lgr := zerolog.Nop()
	return NewRegistryService(store, initialUniversityCredits, lgr),
		NewTokenService(store, store, lgr),
		NewCourseService(store, fakeCourses{store}, store, pricing.DefaultCourseTokenCost, lgr)
}

// memStore is an in-memory implementation of every storage interface the
// services depend on. Mutating calls mirror the all-or-nothing behavior of
// the Postgres repositories: they validate first and only then touch state.
type memStore struct {
	accounts     map[string]*models.Account
	accountOrder []string
	balances     map[string]int64
	provenance   map[string]map[string]int64
	movements    []*models.TokenMovement
	courses      map[int64]*models.CourseOffering
	auths        map[string]*models.TeachingAuthorization
	records      map[string]*models.EnrollmentRecord
	tokens       map[string]*memToken
	nextCourseID int64
}

type memToken struct {
	identity   string
	expiryDate time.Time
	revoked    bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[string]*models.Account),
		balances:     make(map[string]int64),
		provenance:   make(map[string]map[string]int64),
		courses:      make(map[int64]*models.CourseOffering),
		auths:        make(map[string]*models.TeachingAuthorization),
		records:      make(map[string]*models.EnrollmentRecord),
		tokens:       make(map[string]*memToken),
		nextCourseID: 1,
	}
}

func authKey(courseID int64, university string) string {
	return fmt.Sprintf("%d|%s", courseID, university)
}

func recordKey(courseID, recordID int64) string {
	return fmt.Sprintf("%d|%d", courseID, recordID)
}

// totalSupply sums every balance, for conservation checks.
func (m *memStore) totalSupply() int64 {
	var total int64
	for _, b := range m.balances {
		total += b
	}
	return total
}

// provenanceSum sums a student's sub-balances across universities.
func (m *memStore) provenanceSum(student string) int64 {
	var total int64
	for _, b := range m.provenance[student] {
		total += b
	}
	return total
}

// --- AccountStore ---

func (m *memStore) Create(_ context.Context, account *models.Account, initialBalance int64) error {
	if _, exists := m.accounts[account.Identity]; exists {
		return apperrors.ErrAlreadyRegistered
	}
	account.RegisteredAt = time.Now()
	m.accounts[account.Identity] = account
	m.accountOrder = append(m.accountOrder, account.Identity)
	m.balances[account.Identity] = initialBalance
	if initialBalance > 0 {
		m.movements = append(m.movements, &models.TokenMovement{
			ID:         int64(len(m.movements) + 1),
			Kind:       models.MovementIssuance,
			ToIdentity: account.Identity,
			Amount:     initialBalance,
			CreatedAt:  time.Now(),
		})
	}
	return nil
}

func (m *memStore) GetByIdentity(_ context.Context, identity string) (*models.Account, error) {
	account, ok := m.accounts[identity]
	if !ok {
		return nil, apperrors.ErrNotRegistered
	}
	return account, nil
}

func (m *memStore) ListByRole(_ context.Context, roleType models.RoleType) ([]*models.Account, error) {
	var accounts []*models.Account
	for _, identity := range m.accountOrder {
		if m.accounts[identity].RoleType == roleType {
			accounts = append(accounts, m.accounts[identity])
		}
	}
	return accounts, nil
}

func (m *memStore) ExistsWithRole(_ context.Context, identity string, roleType models.RoleType) (bool, error) {
	account, ok := m.accounts[identity]
	return ok && account.RoleType == roleType, nil
}

// --- RefreshTokenStore ---

func (m *memStore) CreateToken(_ context.Context, token string, identity string, expiryDate time.Time) error {
	m.tokens[token] = &memToken{identity: identity, expiryDate: expiryDate}
	return nil
}

func (m *memStore) GetTokenByValue(_ context.Context, token string) (string, error) {
	t, ok := m.tokens[token]
	if !ok {
		return "", apperrors.ErrTokenNotFound
	}
	if t.revoked {
		return "", apperrors.ErrTokenRevoked
	}
	if t.expiryDate.Before(time.Now()) {
		return "", apperrors.ErrTokenExpired
	}
	return t.identity, nil
}

func (m *memStore) RevokeToken(_ context.Context, token string) error {
	t, ok := m.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (m *memStore) RevokeAllForIdentity(_ context.Context, identity string) error {
	for _, t := range m.tokens {
		if t.identity == identity {
			t.revoked = true
		}
	}
	return nil
}

// --- LedgerStore ---

func (m *memStore) TransferPurchase(_ context.Context, studentIdentity, universityIdentity string, amount int64) error {
	if m.balances[universityIdentity] < amount {
		return apperrors.ErrInsufficientBalance
	}
	m.balances[universityIdentity] -= amount
	m.balances[studentIdentity] += amount
	if m.provenance[studentIdentity] == nil {
		m.provenance[studentIdentity] = make(map[string]int64)
	}
	m.provenance[studentIdentity][universityIdentity] += amount
	m.movements = append(m.movements, &models.TokenMovement{
		ID:           int64(len(m.movements) + 1),
		Kind:         models.MovementPurchase,
		FromIdentity: universityIdentity,
		ToIdentity:   studentIdentity,
		Amount:       amount,
		CreatedAt:    time.Now(),
	})
	return nil
}

func (m *memStore) BalanceOf(_ context.Context, identity string) (int64, error) {
	return m.balances[identity], nil
}

func (m *memStore) ProvenanceBalanceOf(_ context.Context, studentIdentity, universityIdentity string) (int64, error) {
	return m.provenance[studentIdentity][universityIdentity], nil
}

func (m *memStore) MovementsOf(_ context.Context, identity string) ([]*models.TokenMovement, error) {
	var out []*models.TokenMovement
	for i := len(m.movements) - 1; i >= 0; i-- {
		mv := m.movements[i]
		if mv.FromIdentity == identity || mv.ToIdentity == identity {
			out = append(out, mv)
		}
	}
	return out, nil
}

// --- CourseStore ---

// fakeCourses adapts memStore to the CourseStore interface; its Create
// shadows the account Create promoted from the embedded store.
type fakeCourses struct{ *memStore }

func (f fakeCourses) Create(_ context.Context, course *models.CourseOffering) error {
	return f.memStore.createCourseOffering(course)
}

func (m *memStore) createCourseOffering(course *models.CourseOffering) error {
	for _, existing := range m.courses {
		if existing.Symbol == course.Symbol {
			return apperrors.ErrCourseAlreadyExists
		}
	}
	course.ID = m.nextCourseID
	m.nextCourseID++
	course.NextRecordID = 1
	course.CreatedAt = time.Now()
	m.courses[course.ID] = course
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*models.CourseOffering, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return course, nil
}

func (m *memStore) GetAll(_ context.Context) ([]*models.CourseOffering, error) {
	var courses []*models.CourseOffering
	for id := int64(1); id < m.nextCourseID; id++ {
		if course, ok := m.courses[id]; ok {
			courses = append(courses, course)
		}
	}
	return courses, nil
}

func (m *memStore) SetAuthorization(_ context.Context, auth *models.TeachingAuthorization) error {
	m.auths[authKey(auth.CourseID, auth.UniversityIdentity)] = auth
	return nil
}

func (m *memStore) GetAuthorization(_ context.Context, courseID int64, universityIdentity string) (*models.TeachingAuthorization, error) {
	auth, ok := m.auths[authKey(courseID, universityIdentity)]
	if !ok {
		return nil, apperrors.ErrNoProfessorAssigned
	}
	return auth, nil
}

// --- EnrollmentStore ---

func (m *memStore) CreateEnrollment(_ context.Context, rec *models.EnrollmentRecord, course *models.CourseOffering, costFn pricing.CostFn) (int64, error) {
	course, ok := m.courses[course.ID]
	if !ok {
		return 0, apperrors.ErrCourseNotFound
	}

	// Like the Postgres store, the attempt count is read and priced as part
	// of the write itself.
	var attempts int64
	for _, existing := range m.records {
		if existing.CourseID == rec.CourseID && existing.StudentIdentity == rec.StudentIdentity {
			attempts++
		}
	}
	cost, err := costFn(course.ExperimentalFactor, attempts, course.BaseCredits)
	if err != nil {
		return 0, err
	}

	if m.provenance[rec.StudentIdentity][rec.UniversityIdentity] < cost {
		return 0, apperrors.ErrInsufficientProvenanceBalance
	}
	if m.balances[rec.StudentIdentity] < cost {
		return 0, apperrors.ErrInsufficientBalance
	}
	m.provenance[rec.StudentIdentity][rec.UniversityIdentity] -= cost
	m.balances[rec.StudentIdentity] -= cost
	m.balances[rec.UniversityIdentity] += cost

	rec.RecordID = course.NextRecordID
	course.NextRecordID++
	rec.Status = models.StatusEnrolled
	rec.CreatedAt = time.Now()

	stored := *rec
	m.records[recordKey(rec.CourseID, rec.RecordID)] = &stored

	courseID := rec.CourseID
	m.movements = append(m.movements, &models.TokenMovement{
		ID:           int64(len(m.movements) + 1),
		Kind:         models.MovementEnrollment,
		FromIdentity: rec.StudentIdentity,
		ToIdentity:   rec.UniversityIdentity,
		Amount:       cost,
		CourseID:     &courseID,
		CreatedAt:    time.Now(),
	})
	return cost, nil
}

func (m *memStore) GetRecord(_ context.Context, courseID, recordID int64) (*models.EnrollmentRecord, error) {
	rec, ok := m.records[recordKey(courseID, recordID)]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *memStore) ListRecords(_ context.Context, courseID int64) ([]*models.EnrollmentRecord, error) {
	course, ok := m.courses[courseID]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	var records []*models.EnrollmentRecord
	for id := int64(1); id < course.NextRecordID; id++ {
		if rec, ok := m.records[recordKey(courseID, id)]; ok {
			copied := *rec
			records = append(records, &copied)
		}
	}
	return records, nil
}

func (m *memStore) UpdateEvaluation(_ context.Context, rec *models.EnrollmentRecord) error {
	stored, ok := m.records[recordKey(rec.CourseID, rec.RecordID)]
	if !ok {
		return apperrors.ErrRecordNotFound
	}
	if stored.Status != models.StatusEnrolled {
		return apperrors.ErrAlreadyEvaluated
	}
	stored.Grade = rec.Grade
	stored.Status = rec.Status
	stored.OwnerIdentity = rec.OwnerIdentity
	return nil
}

func (m *memStore) UpdateRelocation(_ context.Context, rec *models.EnrollmentRecord, expectedOwner string) error {
	stored, ok := m.records[recordKey(rec.CourseID, rec.RecordID)]
	if !ok {
		return apperrors.ErrRecordNotFound
	}
	if stored.OwnerIdentity != expectedOwner || stored.Status != models.StatusEvaluatedPassed {
		return apperrors.ErrNotOwner
	}
	stored.OwnerIdentity = rec.OwnerIdentity
	stored.UniversityIdentity = rec.UniversityIdentity
	return nil
}

func (m *memStore) CountOwnedBy(_ context.Context, courseID int64, identity string) (int64, error) {
	var count int64
	for _, rec := range m.records {
		if rec.CourseID == courseID && rec.OwnerIdentity == identity {
			count++
		}
	}
	return count, nil
}

func (m *memStore) CountAttempts(_ context.Context, courseID int64, studentIdentity string) (int64, error) {
	var count int64
	for _, rec := range m.records {
		if rec.CourseID == courseID && rec.StudentIdentity == studentIdentity {
			count++
		}
	}
	return count, nil
}
