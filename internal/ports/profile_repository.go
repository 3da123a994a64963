package ports

import (
	"context"

	"github.com/bft-labs/herald/internal/domain"
)

// ProfileRepository persists sender profiles keyed by name.
type ProfileRepository interface {
	// Load reads every stored profile. A missing store yields an empty map.
	Load(ctx context.Context) (map[string]domain.Profile, error)

	// Get returns the named profile or domain.ErrProfileNotFound.
	Get(ctx context.Context, name string) (domain.Profile, error)

	// Put adds or replaces a profile.
	Put(ctx context.Context, profile domain.Profile) error
}

// RecipientSource reads the recipient list for a run.
type RecipientSource interface {
	Read(ctx context.Context) ([]domain.Recipient, error)
}
