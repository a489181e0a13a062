package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Wildcard is the literal the RBAC service uses to grant everything.
const Wildcard = "ALL"

// ModuleAccess is the set of feature modules and subroutes a role may see.
// Either half can independently be the wildcard.
type ModuleAccess struct {
	AllModules     bool
	AllSubroutes   bool
	AllowModules   []string
	AllowSubroutes []string
}

func AllowAll() ModuleAccess {
	return ModuleAccess{AllModules: true, AllSubroutes: true}
}

func DenyAll() ModuleAccess {
	return ModuleAccess{AllowModules: []string{}, AllowSubroutes: []string{}}
}

// IsAllowAll reports whether both halves are the wildcard.
func (m ModuleAccess) IsAllowAll() bool {
	return m.AllModules && m.AllSubroutes
}

// AllowsModule reports whether module is visible under this grant.
func (m ModuleAccess) AllowsModule(module string) bool {
	return m.AllModules || slices.Contains(m.AllowModules, module)
}

// AllowsSubroute reports whether subroute is visible under this grant.
func (m ModuleAccess) AllowsSubroute(subroute string) bool {
	return m.AllSubroutes || slices.Contains(m.AllowSubroutes, subroute)
}

// MarshalJSON renders wildcard halves as the "ALL" literal.
func (m ModuleAccess) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AllowModules   any `json:"allowModules"`
		AllowSubroutes any `json:"allowSubroutes"`
	}{
		AllowModules:   encodeGrant(m.AllModules, m.AllowModules),
		AllowSubroutes: encodeGrant(m.AllSubroutes, m.AllowSubroutes),
	})
}

// UnmarshalJSON accepts either field as "ALL" or a string list. Missing
// fields default to empty lists.
func (m *ModuleAccess) UnmarshalJSON(data []byte) error {
	var raw struct {
		AllowModules   json.RawMessage `json:"allowModules"`
		AllowSubroutes json.RawMessage `json:"allowSubroutes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	allModules, modules, err := decodeGrant(raw.AllowModules)
	if err != nil {
		return fmt.Errorf("allowModules: %w", err)
	}
	allSubroutes, subroutes, err := decodeGrant(raw.AllowSubroutes)
	if err != nil {
		return fmt.Errorf("allowSubroutes: %w", err)
	}
	*m = ModuleAccess{
		AllModules:     allModules,
		AllSubroutes:   allSubroutes,
		AllowModules:   modules,
		AllowSubroutes: subroutes,
	}
	return nil
}

func encodeGrant(all bool, list []string) any {
	if all {
		return Wildcard
	}
	if list == nil {
		return []string{}
	}
	return list
}

func decodeGrant(raw json.RawMessage) (bool, []string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, []string{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, nil, err
		}
		if s == Wildcard {
			return true, nil, nil
		}
		return false, []string{s}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return false, nil, err
	}
	if list == nil {
		list = []string{}
	}
	return false, list, nil
}
