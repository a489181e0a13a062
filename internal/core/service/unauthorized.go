package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/pkg/metrics"
)

// OnUnauthorized is the HTTP layer's 401/403 callback.
//
// Events arriving within the debounce window of the previous one are
// dropped. A rejection from the auth endpoints ends the session at once;
// any other rejection may only mean the role lacks rights on one resource,
// so the session is revalidated against the profile endpoint instead.
func (c *Coordinator) OnUnauthorized(ev domain.UnauthorizedEvent) {
	now := c.now()

	c.mu.Lock()
	if !c.lastUnauthorized.IsZero() && now.Sub(c.lastUnauthorized) < c.cfg.DebounceWindow {
		c.mu.Unlock()
		metrics.UnauthorizedEventsTotal.WithLabelValues("debounced").Inc()
		return
	}
	c.lastUnauthorized = now

	if c.isAuthEndpoint(ev.URL) {
		c.resetLocked()
		c.nextEpochLocked()
		c.mu.Unlock()
		metrics.UnauthorizedEventsTotal.WithLabelValues("auth_endpoint").Inc()
		metrics.LogoutsTotal.WithLabelValues("auth_endpoint_rejected").Inc()
		c.log.Info().Str("url", ev.URL).Msg("auth endpoint rejected credential, signing out")
		_ = c.releaseCredentials(c.bgCtx)
		c.nav.Navigate(domain.SignInPath, true)
		return
	}

	epoch := c.nextEpochLocked()
	c.mu.Unlock()

	metrics.UnauthorizedEventsTotal.WithLabelValues("revalidate").Inc()
	c.log.Debug().Str("url", ev.URL).Uint64("epoch", uint64(epoch)).Msg("revalidating session after rejected request")
	c.goAsync(func(ctx context.Context) {
		c.revalidate(ctx, epoch, "unauthorized")
	})
}

// isAuthEndpoint reports whether the request path, relative to the school
// API base path, begins with the auth prefix.
func (c *Coordinator) isAuthEndpoint(raw string) bool {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	if c.basePath != "" && strings.HasPrefix(path, c.basePath+"/") {
		path = strings.TrimPrefix(path, c.basePath)
	}
	return strings.HasPrefix(path, c.cfg.AuthPrefix)
}
