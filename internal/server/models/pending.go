package models

import "time"

// Candidate is the user payload collected at registration time. The password
// is kept in cleartext until the OTP is confirmed and it gets hashed.
type Candidate struct {
	Email      string
	FirstName  string
	LastName   string
	Password   string
	Mobile     string
	ProfilePic string
}

// PendingRegistration is an in-flight registration awaiting OTP confirmation.
type PendingRegistration struct {
	OTP       string
	Candidate Candidate
	CreatedAt time.Time
}
