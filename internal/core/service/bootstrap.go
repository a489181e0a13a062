package service

import (
	"context"
	"fmt"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
	"github.com/campusdesk/portal-agent/pkg/metrics"
)

// Bootstrap restores a stored session. It only runs once per coordinator.
//
// A stored token and user mark the session authenticated before Bootstrap
// returns; the profile check that confirms or clears it runs in the
// background and closes Ready when it settles.
func (c *Coordinator) Bootstrap(ctx context.Context) {
	c.bootOnce.Do(func() {
		if err := c.restore(ctx); err != nil {
			c.log.Error().Err(err).Msg("session bootstrap failed, clearing stored session")
			_ = c.teardown(ctx)
			c.markReady()
		}
	})
}

func (c *Coordinator) restore(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bootstrap panic: %v", r)
		}
	}()

	pair := domain.PairFor(c.cfg.PreferredTier)
	stored, err := c.store.ReadSession(ctx, pair)
	if err != nil {
		return err
	}
	campus, ok, err := c.store.Campus(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if ok {
		c.campusID = campus
	}
	c.mu.Unlock()

	if stored.Token == "" {
		c.markReady()
		return nil
	}

	// The revalidation below must already carry the credential.
	c.http.SetAuthToken(stored.Token)

	c.mu.Lock()
	c.token = stored.Token
	if stored.HasUser {
		u := stored.User
		c.user = &u
		c.authenticated = true
	}
	epoch := c.nextEpochLocked()
	c.mu.Unlock()

	if stored.HasUser {
		c.log.Info().Str("role", stored.User.Role).Str("tier", string(pair.Active)).Msg("session restored optimistically")
		c.refreshAccessAsync(stored.User.Role)
	}

	if c.cfg.DemoAuth {
		c.markReady()
		return nil
	}

	c.goAsync(func(bg context.Context) {
		defer c.markReady()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Msg("bootstrap revalidation panicked, clearing session")
				_ = c.teardown(bg)
			}
		}()
		c.revalidate(bg, epoch, "bootstrap")
	})
	return nil
}

// revalidate asks the profile endpoint whether the held credential is still
// good and commits the answer if epoch is still current. A 401/403 clears the
// session; any other failure leaves it alone.
func (c *Coordinator) revalidate(ctx context.Context, epoch domain.Epoch, source string) {
	user, err := c.auth.Profile(ctx, ports.ProfileOptions{SkipUnauthorizedHandler: true})

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		metrics.RevalidationsTotal.WithLabelValues(source, "stale").Inc()
		c.log.Debug().Str("source", source).Uint64("epoch", uint64(epoch)).Msg("discarding superseded revalidation")
		return
	}

	switch {
	case err == nil && user != nil:
		u := *user
		c.user = &u
		c.authenticated = true
		c.mu.Unlock()
		metrics.RevalidationsTotal.WithLabelValues(source, "valid").Inc()
		c.access.Refresh(ctx, u.Role)

	case err != nil && domain.IsUnauthorized(err):
		c.resetLocked()
		c.nextEpochLocked()
		c.mu.Unlock()
		metrics.RevalidationsTotal.WithLabelValues(source, "rejected").Inc()
		c.log.Info().Str("source", source).Msg("session rejected by profile check")
		_ = c.releaseCredentials(ctx)
		if source != "bootstrap" {
			metrics.LogoutsTotal.WithLabelValues("revalidation_rejected").Inc()
			c.nav.Navigate(domain.SignInPath, true)
		}

	default:
		c.mu.Unlock()
		metrics.RevalidationsTotal.WithLabelValues(source, "transient").Inc()
		c.log.Warn().Err(err).Str("source", source).Msg("profile check failed, keeping session")
	}
}
