// Package profiles persists bank configuration profiles in a key-value
// store under a versioned storage key.
package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/taxpj/backend/internal/domain"
)

// StorageKey is the versioned key the profile list lives under. Bump the
// version to orphan incompatible older payloads instead of migrating them.
const StorageKey = "taxpj_profiles_v21"

// legacyKeys enumerates the storage keys of earlier payload versions,
// removed on a bulk clear.
func legacyKeys() []string {
	keys := make([]string, 0, 12)
	for v := 10; v <= 21; v++ {
		keys = append(keys, fmt.Sprintf("taxpj_profiles_v%d", v))
	}
	return keys
}

// KV is the minimal key-value contract the store needs. Get returns
// ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is CRUD over ConfigProfile records, persisted synchronously on every
// committed change.
type Store struct {
	kv KV
}

// NewStore creates a profile store over the given key-value backend.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// List loads the current profile list. A missing key or an undecodable
// payload yields an empty list, never an error: startup must not fail over
// stale configuration.
func (s *Store) List(ctx context.Context) []domain.ConfigProfile {
	data, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil || !ok {
		return nil
	}
	var profiles []domain.ConfigProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil
	}
	return profiles
}

// Find returns the profile with the given id.
func (s *Store) Find(ctx context.Context, id string) (domain.ConfigProfile, bool) {
	for _, p := range s.List(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return domain.ConfigProfile{}, false
}

// Save validates and upserts a profile. A profile without an ID is created
// (ID assigned, name uppercased); one with an ID replaces the stored record.
func (s *Store) Save(ctx context.Context, p domain.ConfigProfile) (domain.ConfigProfile, error) {
	if err := p.Validate(); err != nil {
		return domain.ConfigProfile{}, err
	}

	profiles := s.List(ctx)

	if p.ID == "" {
		p.ID = uuid.NewString()
		p.Name = strings.ToUpper(p.Name)
		profiles = append(profiles, p)
	} else {
		found := false
		for i := range profiles {
			if profiles[i].ID == p.ID {
				profiles[i] = p
				found = true
				break
			}
		}
		if !found {
			profiles = append(profiles, p)
		}
	}

	if err := s.persist(ctx, profiles); err != nil {
		return domain.ConfigProfile{}, err
	}
	return p, nil
}

// Delete removes one profile. Transactions referencing it are left alone;
// ledger rendering substitutes the removed-bank placeholder.
func (s *Store) Delete(ctx context.Context, id string) error {
	profiles := s.List(ctx)
	kept := profiles[:0]
	for _, p := range profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.persist(ctx, kept)
}

// Clear removes every profile, including payloads left under legacy keys.
func (s *Store) Clear(ctx context.Context) error {
	for _, key := range legacyKeys() {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear profiles: %w", err)
		}
	}
	return nil
}

// persist writes the list back; an empty list removes the key entirely.
func (s *Store) persist(ctx context.Context, profiles []domain.ConfigProfile) error {
	if len(profiles) == 0 {
		return s.kv.Delete(ctx, StorageKey)
	}
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("persist profiles: %w", err)
	}
	return s.kv.Set(ctx, StorageKey, data)
}
