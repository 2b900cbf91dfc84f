package identity

import (
	"fmt"
	"strings"

	"github.com/gmubooktrading/api/internal/domain"
	"github.com/gmubooktrading/api/internal/platform/supabase"
	"github.com/google/uuid"
)

// toDomainUser reshapes a provider user. The provider's ids are UUIDs.
func toDomainUser(u *supabase.User) (domain.User, error) {
	if u == nil {
		return domain.User{}, fmt.Errorf("provider returned no user")
	}
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("provider user id %q: %w", u.ID, domain.ErrInvalidID)
	}
	return domain.User{
		ID:            id,
		Email:         domain.NormalizeEmail(u.Email),
		FullName:      u.FullName(),
		EmailVerified: u.Confirmed(),
		VerifiedAt:    u.VerifiedAt(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}, nil
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
