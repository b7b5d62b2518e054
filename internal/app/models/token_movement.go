package models

import "time"

// MovementKind tags an entry in the token movement journal.
type MovementKind string

const (
	// MovementIssuance: genesis supply granted to a university at registration.
	MovementIssuance MovementKind = "ISSUANCE"
	// MovementPurchase: university -> student transfer paid for in wei.
	MovementPurchase MovementKind = "PURCHASE"
	// MovementEnrollment: student -> university debit for a course enrollment.
	MovementEnrollment MovementKind = "ENROLLMENT"
)

// TokenMovement is one append-only journal entry for a credit-token balance
// change. Amounts are in scaled token units.
type TokenMovement struct {
	ID           int64        `json:"id" db:"id"`
	Kind         MovementKind `json:"kind" db:"kind"`
	FromIdentity string       `json:"fromIdentity,omitempty" db:"from_identity"`
	ToIdentity   string       `json:"toIdentity" db:"to_identity"`
	Amount       int64        `json:"amount" db:"amount"`
	CourseID     *int64       `json:"courseId,omitempty" db:"course_id"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
}
