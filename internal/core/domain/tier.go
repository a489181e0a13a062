package domain

import (
	"fmt"
	"strings"
)

// Tier names one of the two key/value storages a session can live in.
type Tier string

const (
	// TierDurable survives agent restarts.
	TierDurable Tier = "durable"
	// TierEphemeral lives only as long as the agent process.
	TierEphemeral Tier = "ephemeral"
)

// Other returns the opposite tier.
func (t Tier) Other() Tier {
	if t == TierDurable {
		return TierEphemeral
	}
	return TierDurable
}

// ParseTier accepts "durable"/"local" and "ephemeral"/"session".
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "durable", "local":
		return TierDurable, nil
	case "ephemeral", "session":
		return TierEphemeral, nil
	default:
		return "", fmt.Errorf("unknown storage tier %q", s)
	}
}

// TierPair is the tier an operation reads or writes first, plus the one it
// falls back to. Active and Fallback are always different tiers.
type TierPair struct {
	Active   Tier
	Fallback Tier
}

// PairFor builds the pair whose active tier is t.
func PairFor(t Tier) TierPair {
	return TierPair{Active: t, Fallback: t.Other()}
}

// PairForRemember picks the durable tier when the user asked to be remembered.
func PairForRemember(remember bool) TierPair {
	if remember {
		return PairFor(TierDurable)
	}
	return PairFor(TierEphemeral)
}

// Tiers lists both tiers in a stable order.
func Tiers() []Tier {
	return []Tier{TierDurable, TierEphemeral}
}
