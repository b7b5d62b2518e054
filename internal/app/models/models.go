package models

// RoleType defines the account role type
type RoleType string

const (
	RoleAdmin      RoleType = "ADMIN"
	RoleUniversity RoleType = "UNIVERSITY"
	RoleProfessor  RoleType = "PROFESSOR"
	RoleStudent    RoleType = "STUDENT"
)

// PassingGrade is the minimum grade, on the 0-1000 scale, that passes a course.
const PassingGrade = 500

// MaxGrade is the upper bound of the grading scale.
const MaxGrade = 1000
