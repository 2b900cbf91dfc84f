package domain

import "github.com/google/uuid"

// Profile is the public face of a user. Its ID equals the provider user ID.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName *string   `json:"display_name"`
}
