package ports

import (
	"context"

	"github.com/campusdesk/portal-agent/internal/core/domain"
)

// UnauthorizedHandler is invoked by the HTTP layer for every 401/403.
type UnauthorizedHandler func(domain.UnauthorizedEvent)

// HTTPSession is the outgoing-request side of the HTTP layer.
type HTTPSession interface {
	// SetAuthToken sets the bearer credential; "" clears it.
	SetAuthToken(token string)
	// SetUnauthorizedHandler installs h as the global 401/403 callback; nil removes it.
	SetUnauthorizedHandler(h UnauthorizedHandler)
}

// Navigator moves the UI shell to a route.
type Navigator interface {
	Navigate(path string, replace bool)
}

// ModuleAccessRefresher keeps the module grant of the current role fresh.
type ModuleAccessRefresher interface {
	Refresh(ctx context.Context, role string)
	Current() *domain.ModuleAccess
	Reset()
}
