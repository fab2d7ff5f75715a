package domain

import "time"

// PendingAccount is a registration awaiting email verification.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type PendingAccount struct {
	Email        string    `json:"email" dynamodbav:"email"`
	Username     string    `json:"username" dynamodbav:"username"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Token        string    `json:"-" dynamodbav:"token"`
	ExpiresAt    int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}

// Expired reports whether the verification window has closed at now.
func (p *PendingAccount) Expired(now time.Time) bool {
	return p.ExpiresAt <= now.Unix()
}

// Account is a verified user. It only comes into existence by promoting a PendingAccount.
type Account struct {
	Username     string    `json:"username" dynamodbav:"username"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Verified     bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	VerifiedAt   time.Time `json:"verified_at" dynamodbav:"verified_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,emailtld"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6,bcryptmax"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required"`
}
