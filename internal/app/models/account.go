package models

import "time"

// Account represents a registered participant: the administrative authority,
// a university, a professor or a student. The identity is an opaque,
// caller-supplied account reference and is unique across all roles.
type Account struct {
	Identity     string    `json:"identity" db:"identity"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	RoleType     RoleType  `json:"roleType" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}
