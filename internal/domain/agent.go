package domain

import "time"

const (
	RoleOffice    = "office"
	RoleExecutive = "executive"
)

// Agent is a field executive who can log in to look up loans
type Agent struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CodeHash  string    `json:"-" db:"code_hash"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CreateAgentRequest struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required,min=4,max=72"`
}

type LoginRequest struct {
	ID   string `json:"id" validate:"required"`
	Code string `json:"code" validate:"required"`
	Role string `json:"role" validate:"required,oneof=office executive"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}
