package dto

import (
	"time"

	"github.com/ayto-digital/events-service/internal/domain"
)

// PersonRegisterRequest payload for full registration.
type PersonRegisterRequest struct {
	Identifier int64  `json:"identifier"`
	Name       string `json:"name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Handle     string `json:"handle"`
	Credential string `json:"credential"`
	Phone      string `json:"phone"`
}

// ParticipantRegisterRequest payload for simplified registration.
type ParticipantRegisterRequest struct {
	Identifier int64  `json:"identifier"`
	Name       string `json:"name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// LoginRequest payload for authentication.
type LoginRequest struct {
	Handle     string `json:"handle"`
	Credential string `json:"credential"`
}

// ProfileUpdateRequest payload for profile mutation.
type ProfileUpdateRequest struct {
	Name       string `json:"name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PersonResponse is the outward shape of a person record. The credential
// hash never leaves the service.
type PersonResponse struct {
	ID         string  `json:"id"`
	Identifier int64   `json:"identifier"`
	Name       string  `json:"name"`
	FamilyName string  `json:"family_name"`
	Email      *string `json:"email,omitempty"`
	Handle     *string `json:"handle,omitempty"`
	Phone      string  `json:"phone,omitempty"`
}

// NewPersonResponse maps a domain person.
func NewPersonResponse(person *domain.Person) PersonResponse {
	return PersonResponse{
		ID:         person.ID,
		Identifier: person.Identifier,
		Name:       person.Name,
		FamilyName: person.FamilyName,
		Email:      person.Email,
		Handle:     person.Handle,
		Phone:      person.Phone,
	}
}
