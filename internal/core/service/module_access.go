package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
	"github.com/campusdesk/portal-agent/pkg/metrics"
)

// ModuleAccessRefresher owns the module grant of the signed-in role.
//
// When the RBAC service cannot be reached the previous grant is kept, and
// with no previous grant the role is given allow-all. That favours
// availability over lockdown and is a security-relevant default.
type ModuleAccessRefresher struct {
	rbac ports.RBACAPI
	log  zerolog.Logger

	mu      sync.RWMutex
	current *domain.ModuleAccess
	// gen is bumped by Reset; a refresh commits only under the gen it started with.
	gen uint64
}

func NewModuleAccessRefresher(rbac ports.RBACAPI, log zerolog.Logger) *ModuleAccessRefresher {
	return &ModuleAccessRefresher{rbac: rbac, log: log}
}

// Refresh recomputes the grant for role. It is safe to call repeatedly.
func (r *ModuleAccessRefresher) Refresh(ctx context.Context, role string) {
	r.mu.RLock()
	gen := r.gen
	r.mu.RUnlock()

	if role == "" {
		r.set(gen, domain.DenyAll())
		metrics.ModuleAccessRefreshTotal.WithLabelValues("deny_all").Inc()
		return
	}
	if domain.IsWildcardRole(role) {
		r.set(gen, domain.AllowAll())
		metrics.ModuleAccessRefreshTotal.WithLabelValues("wildcard").Inc()
		return
	}

	access, err := r.rbac.MyModules(ctx)
	if err != nil {
		r.mu.Lock()
		stale := r.gen != gen
		if !stale && r.current == nil {
			fallback := domain.AllowAll()
			r.current = &fallback
		}
		r.mu.Unlock()
		if stale {
			metrics.ModuleAccessRefreshTotal.WithLabelValues("stale").Inc()
			return
		}
		r.log.Warn().Err(err).Str("role", role).Msg("module access fetch failed, keeping previous grant")
		metrics.ModuleAccessRefreshTotal.WithLabelValues("fallback").Inc()
		return
	}

	grant := domain.DenyAll()
	if access != nil {
		grant = *access
		if grant.AllowModules == nil {
			grant.AllowModules = []string{}
		}
		if grant.AllowSubroutes == nil {
			grant.AllowSubroutes = []string{}
		}
	}
	if !r.set(gen, grant) {
		metrics.ModuleAccessRefreshTotal.WithLabelValues("stale").Inc()
		r.log.Debug().Str("role", role).Msg("discarding module access fetched before reset")
		return
	}
	metrics.ModuleAccessRefreshTotal.WithLabelValues("fetched").Inc()
	r.log.Debug().Str("role", role).Int("modules", len(grant.AllowModules)).Msg("module access refreshed")
}

// Current returns a copy of the grant, or nil when none is known.
func (r *ModuleAccessRefresher) Current() *domain.ModuleAccess {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil
	}
	out := *r.current
	return &out
}

// Reset forgets the grant. Refreshes already in flight are discarded.
func (r *ModuleAccessRefresher) Reset() {
	r.mu.Lock()
	r.current = nil
	r.gen++
	r.mu.Unlock()
}

// set commits access if no Reset happened since gen was read.
func (r *ModuleAccessRefresher) set(gen uint64, access domain.ModuleAccess) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return false
	}
	r.current = &access
	return true
}
