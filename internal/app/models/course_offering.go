package models

import "time"

// CourseOffering represents one course. Name, symbol, base credits and
// experimental factor are immutable after creation. Each offering owns an
// independent record space: enrollment record ids are 1-based and
// monotonically assigned per offering via NextRecordID.
type CourseOffering struct {
	ID                 int64     `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Symbol             string    `json:"symbol" db:"symbol"`
	BaseCredits        int64     `json:"baseCredits" db:"base_credits"`
	ExperimentalFactor int64     `json:"experimentalFactor" db:"experimental_factor"`
	NextRecordID       int64     `json:"-" db:"next_record_id"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

// TeachingAuthorization maps a university to the professor allowed to grade
// on its behalf for one course offering. Latest write wins; there is no
// removal operation.
type TeachingAuthorization struct {
	CourseID           int64  `json:"courseId" db:"course_id"`
	UniversityIdentity string `json:"universityIdentity" db:"university_identity"`
	ProfessorIdentity  string `json:"professorIdentity" db:"professor_identity"`
}
