package dto

import "time"

// PurchaseRequest represents a student buying credit tokens from a university.
// Payment is the wei amount the student is transferring, which must equal the
// quoted price exactly.
type PurchaseRequest struct {
	UniversityIdentity string `json:"universityIdentity" binding:"required"`
	Credits            int64  `json:"credits" binding:"required,min=1"`
	Payment            int64  `json:"payment" binding:"required,min=1"`
}

// PurchaseResponse reports the completed purchase
type PurchaseResponse struct {
	UniversityIdentity string `json:"universityIdentity"`
	Credits            int64  `json:"credits"`
	TokenUnits         int64  `json:"tokenUnits"`
	Payment            int64  `json:"payment"`
}

// BalanceResponse represents a participant's total token balance
type BalanceResponse struct {
	Identity string `json:"identity"`
	Balance  int64  `json:"balance"`
}

// ProvenanceBalanceResponse represents the sub-balance a student holds from
// one issuing university
type ProvenanceBalanceResponse struct {
	StudentIdentity    string `json:"studentIdentity"`
	UniversityIdentity string `json:"universityIdentity"`
	Balance            int64  `json:"balance"`
}

// MovementResponse represents one entry of the token movement journal
type MovementResponse struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	FromIdentity string    `json:"fromIdentity,omitempty"`
	ToIdentity   string    `json:"toIdentity"`
	Amount       int64     `json:"amount"`
	CourseID     *int64    `json:"courseId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MovementListResponse represents a participant's movement history
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	Total     int                `json:"total"`
}
