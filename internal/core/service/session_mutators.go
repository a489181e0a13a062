package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
	"github.com/campusdesk/portal-agent/pkg/metrics"
)

// LoginInput is a sign-in attempt from the UI.
type LoginInput struct {
	Identifier string
	Secret     string
	// Remember selects the durable tier; otherwise the session is ephemeral.
	Remember bool
	OwnerKey string
}

// LogoutOptions tunes Logout.
type LogoutOptions struct {
	// SkipRemote does not tell the school API about the logout.
	SkipRemote bool
}

// Login authenticates against the school API and, on success, installs the
// session in memory, in the selected tier and in the HTTP layer. On failure
// the returned error is a *domain.LoginError and nothing has changed.
func (c *Coordinator) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	if strings.TrimSpace(in.Identifier) == "" || in.Secret == "" {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, &domain.LoginError{Err: fmt.Errorf("%w: identifier and password are required", domain.ErrValidation)}
	}
	id, err := ClassifyIdentifier(in.Identifier)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, &domain.LoginError{Err: err}
	}

	req := ports.LoginRequest{Password: in.Secret, OwnerKey: in.OwnerKey}
	switch id.Kind {
	case IdentifierEmail:
		req.Email = id.Value
	case IdentifierPhone:
		req.Phone = id.Value
	default:
		req.Username = id.Value
	}

	resp, err := c.auth.Login(ctx, req)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		c.log.Info().Err(err).Str("identifier_kind", string(id.Kind)).Msg("login rejected")
		return nil, domain.NewLoginError(err)
	}
	if resp == nil || resp.Token == "" {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, &domain.LoginError{Err: errors.New("login response carried no token")}
	}

	pair := domain.PairForRemember(in.Remember)
	creds := Credentials{Token: resp.Token, RefreshToken: resp.RefreshToken, User: resp.User}
	if err := c.store.WriteSession(ctx, pair, creds); err != nil {
		metrics.LoginsTotal.WithLabelValues("storage_error").Inc()
		c.log.Error().Err(err).Str("tier", string(pair.Active)).Msg("failed to persist session")
		return nil, &domain.LoginError{Err: fmt.Errorf("persist session: %w", err)}
	}

	c.http.SetAuthToken(resp.Token)

	user := resp.User.Clone()
	c.mu.Lock()
	c.user = &user
	c.token = resp.Token
	c.authenticated = true
	c.nextEpochLocked()
	c.mu.Unlock()

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.log.Info().Str("role", user.Role).Str("tier", string(pair.Active)).Msg("signed in")

	c.nav.Navigate(domain.DashboardPath(user.Role), true)
	c.refreshAccessAsync(user.Role)

	out := user.Clone()
	return &out, nil
}

// Logout ends the session. Calling it while signed out only navigates.
func (c *Coordinator) Logout(ctx context.Context, opts LogoutOptions) error {
	c.mu.Lock()
	hadToken := c.token != ""
	c.mu.Unlock()

	if hadToken && !opts.SkipRemote {
		if err := c.auth.Logout(ctx); err != nil {
			c.log.Debug().Err(err).Msg("remote logout failed, continuing locally")
		}
	}

	err := c.teardown(ctx)
	if hadToken {
		reason := "user"
		if opts.SkipRemote {
			reason = "local"
		}
		metrics.LogoutsTotal.WithLabelValues(reason).Inc()
		c.log.Info().Str("reason", reason).Msg("signed out")
	}
	c.nav.Navigate(domain.SignInPath, true)
	return err
}

// UpdateUser shallow-merges patch into the current user and rewrites every
// tier that currently holds a user record.
func (c *Coordinator) UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, domain.ErrNoUser
	}
	merged := patch.Apply(*c.user)
	c.user = &merged
	c.mu.Unlock()

	tiers, err := c.store.TiersHoldingUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	for _, tier := range tiers {
		if err := c.store.WriteUser(ctx, tier, merged); err != nil {
			return nil, fmt.Errorf("update user in %s tier: %w", tier, err)
		}
	}

	out := merged.Clone()
	return &out, nil
}

// SetCampusID selects the campus scope; "" falls back to the user's campus.
func (c *Coordinator) SetCampusID(ctx context.Context, campusID string) error {
	if err := c.store.SetCampus(ctx, campusID); err != nil {
		return fmt.Errorf("set campus: %w", err)
	}
	c.mu.Lock()
	c.campusID = campusID
	c.mu.Unlock()
	return nil
}
