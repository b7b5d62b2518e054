package dto

import "time"

// CreateCourseRequest represents an admin creating a course offering
type CreateCourseRequest struct {
	Name               string `json:"name" binding:"required,max=255"`
	Symbol             string `json:"symbol" binding:"required,max=32"`
	BaseCredits        int64  `json:"baseCredits" binding:"required,min=1"`
	ExperimentalFactor int64  `json:"experimentalFactor" binding:"min=0"`
}

// CourseResponse represents a course offering
type CourseResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Symbol             string    `json:"symbol"`
	BaseCredits        int64     `json:"baseCredits"`
	ExperimentalFactor int64     `json:"experimentalFactor"`
	CreatedAt          time.Time `json:"createdAt"`
}

// CourseListResponse represents all course offerings
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
	Total   int              `json:"total"`
}

// CourseCostResponse quotes the token cost of enrolling a student, including
// the repetition surcharge from prior attempts
type CourseCostResponse struct {
	CourseID      int64  `json:"courseId"`
	StudentID     string `json:"studentIdentity"`
	PriorAttempts int64  `json:"priorAttempts"`
	TokenCost     int64  `json:"tokenCost"`
}

// AuthorizeProfessorRequest assigns a professor to teach a course at a
// university
type AuthorizeProfessorRequest struct {
	UniversityIdentity string `json:"universityIdentity" binding:"required"`
	ProfessorIdentity  string `json:"professorIdentity" binding:"required"`
}

// AuthorizationResponse represents a teaching assignment
type AuthorizationResponse struct {
	CourseID           int64  `json:"courseId"`
	UniversityIdentity string `json:"universityIdentity"`
	ProfessorIdentity  string `json:"professorIdentity"`
}

// EnrollRequest represents a student enrolling in a course at a university
type EnrollRequest struct {
	UniversityIdentity string `json:"universityIdentity" binding:"required"`
	AcademicYear       string `json:"academicYear" binding:"required,max=16"`
}

// EvaluateRequest represents a professor grading an enrollment
type EvaluateRequest struct {
	StudentIdentity string `json:"studentIdentity" binding:"required"`
	Grade           int64  `json:"grade" binding:"min=0,max=1000"`
}

// RelocateRequest moves a passed record to another university
type RelocateRequest struct {
	NewUniversityIdentity string `json:"newUniversityIdentity" binding:"required"`
}

// EnrollmentRecordResponse represents one enrollment record of a course
type EnrollmentRecordResponse struct {
	CourseID           int64     `json:"courseId"`
	RecordID           int64     `json:"recordId"`
	OwnerIdentity      string    `json:"ownerIdentity"`
	StudentIdentity    string    `json:"studentIdentity"`
	UniversityIdentity string    `json:"universityIdentity"`
	AcademicYear       string    `json:"academicYear"`
	Grade              *int64    `json:"grade,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

// RecordCountResponse reports how many records of a course an identity owns
type RecordCountResponse struct {
	CourseID int64  `json:"courseId"`
	Identity string `json:"identity"`
	Count    int64  `json:"count"`
}
