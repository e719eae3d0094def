// Package profile loads and saves user account records. Profiles use
// one-shot fetches rather than standing subscriptions, and saves overwrite
// the full record.
package profile

import (
	"context"
	"fmt"

	"github.com/an-gr-hh1/landslide-sync/internal/domain"
	"github.com/an-gr-hh1/landslide-sync/internal/feed"
)

// Store reads and writes users/{uid} records.
type Store struct {
	svc feed.RealtimeService
}

// NewStore creates a profile store over the realtime service.
func NewStore(svc feed.RealtimeService) *Store {
	return &Store{svc: svc}
}

// Load fetches the profile for uid. A missing or malformed record decodes
// to the zero profile rather than an error; only transport failures are
// reported.
func (s *Store) Load(ctx context.Context, uid string) (domain.UserProfile, error) {
	raw, err := s.svc.Get(ctx, "users/"+uid)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("load profile %s: %w", uid, err)
	}
	p := domain.DecodeUserProfile(raw)
	p.UID = uid
	return p, nil
}

// Save overwrites the full profile record. Only the owning user mutates a
// profile, so no merge with the remote copy is attempted.
func (s *Store) Save(ctx context.Context, p domain.UserProfile) error {
	if p.UID == "" {
		return fmt.Errorf("save profile: missing uid")
	}
	if err := s.svc.Set(ctx, "users/"+p.UID, p); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UID, err)
	}
	return nil
}
