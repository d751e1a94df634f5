package domain

import "time"

// Person is the domain model for people registered with the municipality.
//
// People admitted through full registration carry a login handle and a
// credential hash; participants admitted through simplified registration
// carry neither, and may lack an email as well.
type Person struct {
	ID             string
	Identifier     int64
	Name           string
	FamilyName     string
	Email          *string
	Handle         *string
	CredentialHash *string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasAccess reports whether the person can authenticate against the service.
func (p *Person) HasAccess() bool {
	return p.Handle != nil && p.CredentialHash != nil
}
