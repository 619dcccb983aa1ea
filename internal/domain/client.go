package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a merchant account that creates payment links
type Client struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Approved     bool      `json:"approved" db:"approved"`
	Blocked      bool      `json:"blocked" db:"blocked"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CanLogin reports whether the account passes the approval/block gates.
// Credential checks are separate; a blocked or unapproved client is
// rejected regardless of password correctness.
func (c *Client) CanLogin() bool {
	return c.Approved && !c.Blocked
}

// DTOs for requests and responses

type RegisterClientRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type ClientLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateClientRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Approved *bool   `json:"approved"`
}

type LoginResponse struct {
	Token  string  `json:"token"`
	Client *Client `json:"client"`
}

// DashboardStats summarizes a client's payment links for the dashboard view
type DashboardStats struct {
	TotalLinks      int `json:"total_links"`
	PaidLinks       int `json:"paid_links"`
	PendingPayments int `json:"pending_payments"`
}
