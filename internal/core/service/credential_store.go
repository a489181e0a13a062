package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
)

// Storage keys shared by both tiers.
const (
	KeyAuthToken    = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "auth_user"
	// KeyCampus is only ever written to the durable tier.
	KeyCampus = "selected_campus_id"
)

var sessionKeys = []string{KeyAuthToken, KeyRefreshToken, KeyUser}

// Credentials is what a login persists.
type Credentials struct {
	Token        string
	RefreshToken string
	User         domain.User
}

// StoredSession is what was found in storage at bootstrap.
type StoredSession struct {
	Token string
	// User is only valid when HasUser is true.
	User    domain.User
	HasUser bool
}

// CredentialStore reads and writes session keys across the durable and
// ephemeral tiers. It never validates values.
type CredentialStore struct {
	tiers map[domain.Tier]ports.KeyValueStore
}

func NewCredentialStore(durable, ephemeral ports.KeyValueStore) *CredentialStore {
	return &CredentialStore{tiers: map[domain.Tier]ports.KeyValueStore{
		domain.TierDurable:   durable,
		domain.TierEphemeral: ephemeral,
	}}
}

func (s *CredentialStore) store(tier domain.Tier) (ports.KeyValueStore, error) {
	kv, ok := s.tiers[tier]
	if !ok || kv == nil {
		return nil, fmt.Errorf("credential store: unknown tier %q", tier)
	}
	return kv, nil
}

func (s *CredentialStore) Get(ctx context.Context, tier domain.Tier, key string) (string, bool, error) {
	kv, err := s.store(tier)
	if err != nil {
		return "", false, err
	}
	return kv.Get(ctx, key)
}

func (s *CredentialStore) Set(ctx context.Context, tier domain.Tier, key, value string) error {
	kv, err := s.store(tier)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, value)
}

func (s *CredentialStore) Remove(ctx context.Context, tier domain.Tier, key string) error {
	kv, err := s.store(tier)
	if err != nil {
		return err
	}
	return kv.Delete(ctx, key)
}

// Read looks key up in the active tier, then in the fallback tier.
func (s *CredentialStore) Read(ctx context.Context, pair domain.TierPair, key string) (string, bool, error) {
	for _, tier := range []domain.Tier{pair.Active, pair.Fallback} {
		v, ok, err := s.Get(ctx, tier, key)
		if err != nil {
			return "", false, fmt.Errorf("read %s from %s tier: %w", key, tier, err)
		}
		if ok && v != "" {
			return v, true, nil
		}
	}
	return "", false, nil
}

// ReadSession loads the stored token and user. A user record that does not
// decode is reported as absent.
func (s *CredentialStore) ReadSession(ctx context.Context, pair domain.TierPair) (StoredSession, error) {
	var out StoredSession
	token, ok, err := s.Read(ctx, pair, KeyAuthToken)
	if err != nil {
		return out, err
	}
	if ok {
		out.Token = token
	}
	raw, ok, err := s.Read(ctx, pair, KeyUser)
	if err != nil {
		return out, err
	}
	if ok {
		out.User, out.HasUser = DecodeUser(raw)
	}
	return out, nil
}

// WriteSession persists creds into pair.Active and removes every session key
// from pair.Fallback, so exactly one tier holds the session. A missing refresh
// token is stored as "".
func (s *CredentialStore) WriteSession(ctx context.Context, pair domain.TierPair, creds Credentials) error {
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	values := map[string]string{
		KeyAuthToken:    creds.Token,
		KeyRefreshToken: creds.RefreshToken,
		KeyUser:         string(userJSON),
	}
	for _, key := range sessionKeys {
		if err := s.Set(ctx, pair.Active, key, values[key]); err != nil {
			return fmt.Errorf("write %s to %s tier: %w", key, pair.Active, err)
		}
	}
	return s.clearTier(ctx, pair.Fallback)
}

// ClearSession removes the session keys from both tiers. Every key is
// attempted; the errors are joined.
func (s *CredentialStore) ClearSession(ctx context.Context) error {
	var errs []error
	for _, tier := range domain.Tiers() {
		if err := s.clearTier(ctx, tier); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *CredentialStore) clearTier(ctx context.Context, tier domain.Tier) error {
	var errs []error
	for _, key := range sessionKeys {
		if err := s.Remove(ctx, tier, key); err != nil {
			errs = append(errs, fmt.Errorf("clear %s in %s tier: %w", key, tier, err))
		}
	}
	return errors.Join(errs...)
}

// TiersHoldingUser lists the tiers that currently have a user record.
func (s *CredentialStore) TiersHoldingUser(ctx context.Context) ([]domain.Tier, error) {
	var out []domain.Tier
	for _, tier := range domain.Tiers() {
		v, ok, err := s.Get(ctx, tier, KeyUser)
		if err != nil {
			return nil, fmt.Errorf("read user from %s tier: %w", tier, err)
		}
		if ok && v != "" {
			out = append(out, tier)
		}
	}
	return out, nil
}

// WriteUser re-serialises user into tier.
func (s *CredentialStore) WriteUser(ctx context.Context, tier domain.Tier, user domain.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.Set(ctx, tier, KeyUser, string(b))
}

// Campus returns the persisted campus scope, if any.
func (s *CredentialStore) Campus(ctx context.Context) (string, bool, error) {
	return s.Get(ctx, domain.TierDurable, KeyCampus)
}

// SetCampus persists the campus scope; "" removes it.
func (s *CredentialStore) SetCampus(ctx context.Context, campusID string) error {
	if campusID == "" {
		return s.Remove(ctx, domain.TierDurable, KeyCampus)
	}
	return s.Set(ctx, domain.TierDurable, KeyCampus, campusID)
}

// DecodeUser parses a stored user record. ok is false when raw is not a
// JSON object.
func DecodeUser(raw string) (domain.User, bool) {
	var u *domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u == nil {
		return domain.User{}, false
	}
	return *u, true
}
