package dto

import "time"

// RegisterAccountRequest represents an admin registering a new participant
type RegisterAccountRequest struct {
	Identity    string `json:"identity" binding:"required,min=2,max=128"`
	DisplayName string `json:"displayName" binding:"required,max=255"`
	Password    string `json:"password" binding:"required,min=8"`
}

// AccountResponse represents a registered participant
type AccountResponse struct {
	Identity     string    `json:"identity"`
	DisplayName  string    `json:"displayName"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// AccountListResponse represents a list of participants in registration order
type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int               `json:"total"`
}
