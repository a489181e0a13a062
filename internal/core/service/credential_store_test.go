package service

import (
	"context"
	"errors"
	"testing"

	"github.com/campusdesk/portal-agent/internal/core/domain"
)

func TestCredentialStore_WriteSessionClearsFallback(t *testing.T) {
	ctx := context.Background()
	durable, ephemeral := newMemKV(), newMemKV()
	seedStored(durable, "old", teacherJSON)
	durable.data[KeyCampus] = "north"
	s := NewCredentialStore(durable, ephemeral)

	err := s.WriteSession(ctx, domain.PairForRemember(false), Credentials{
		Token: "abc",
		User:  domain.User{ID: "S1", Role: domain.RoleStudent},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if durable.holdsAnySessionKey() {
		t.Error("fallback tier still holds session keys")
	}
	if !durable.has(KeyCampus) {
		t.Error("campus scope is not a session key and must survive")
	}
	if ephemeral.value(KeyAuthToken) != "abc" || !ephemeral.has(KeyRefreshToken) {
		t.Error("expected all three keys in the active tier")
	}
}

func TestCredentialStore_ReadPrefersActiveTier(t *testing.T) {
	ctx := context.Background()
	durable, ephemeral := newMemKV(), newMemKV()
	seedStored(durable, "d1", teacherJSON)
	seedStored(ephemeral, "e1", `{"role":"student","id":"S1"}`)
	s := NewCredentialStore(durable, ephemeral)

	got, err := s.ReadSession(ctx, domain.PairFor(domain.TierEphemeral))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Token != "e1" || !got.HasUser || got.User.Role != domain.RoleStudent {
		t.Errorf("expected ephemeral session, got %+v", got)
	}
}

func TestCredentialStore_ReadSessionMalformedUser(t *testing.T) {
	durable := newMemKV()
	seedStored(durable, "d1", "not json")
	s := NewCredentialStore(durable, newMemKV())

	got, err := s.ReadSession(context.Background(), domain.PairFor(domain.TierDurable))
	if err != nil {
		t.Fatalf("parse failures are absence, not errors: %v", err)
	}
	if got.Token != "d1" || got.HasUser {
		t.Errorf("expected token without user, got %+v", got)
	}
}

func TestCredentialStore_ClearSessionAttemptsEveryTier(t *testing.T) {
	durable, ephemeral := newMemKV(), newMemKV()
	seedStored(durable, "d1", teacherJSON)
	seedStored(ephemeral, "e1", teacherJSON)
	s := NewCredentialStore(durable, ephemeral)

	if err := s.ClearSession(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if durable.holdsAnySessionKey() || ephemeral.holdsAnySessionKey() {
		t.Error("expected both tiers empty")
	}
}

func TestCredentialStore_TiersHoldingUser(t *testing.T) {
	durable, ephemeral := newMemKV(), newMemKV()
	ephemeral.data[KeyUser] = teacherJSON
	s := NewCredentialStore(durable, ephemeral)

	tiers, err := s.TiersHoldingUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tiers) != 1 || tiers[0] != domain.TierEphemeral {
		t.Errorf("expected only the ephemeral tier, got %v", tiers)
	}

	durable.failGet = true
	if _, err := s.TiersHoldingUser(context.Background()); !errors.Is(err, errStorageDown) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestCredentialStore_UnknownTier(t *testing.T) {
	s := NewCredentialStore(newMemKV(), newMemKV())

	if _, _, err := s.Get(context.Background(), domain.Tier("cookie"), KeyAuthToken); err == nil {
		t.Error("expected error for an unknown tier")
	}
}

func TestDecodeUser(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{teacherJSON, true},
		{`{}`, true},
		{`null`, false},
		{`"teacher"`, false},
		{`{"role":`, false},
		{``, false},
	}
	for _, tc := range cases {
		if _, ok := DecodeUser(tc.raw); ok != tc.ok {
			t.Errorf("DecodeUser(%q) ok=%v, want %v", tc.raw, ok, tc.ok)
		}
	}
}
