package models

import "time"

// Verification is an orthogonal account attribute. It never gates transfers.
const (
	VerificationUnverified = "Unverified"
	VerificationVerified   = "Verified"
)

type User struct {
	ID                 int       `json:"id" example:"1"`                          // User ID
	Name               string    `json:"name" example:"Ada Obi"`                  // Display name
	Email              string    `json:"email" example:"user@example.com"`        // Login identifier
	VerificationStatus string    `json:"verificationStatus" example:"Unverified"` // Unverified or Verified
	CreatedAt          time.Time `json:"createdAt"`
}
