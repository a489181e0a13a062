package ports

import (
	"context"

	"github.com/campusdesk/portal-agent/internal/core/domain"
)

// LoginRequest is sent to /auth/login. Exactly one of Email, Phone or
// Username is set, depending on how the identifier was classified.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
	OwnerKey string `json:"ownerKey,omitempty"`
}

// LoginResponse is the normalised answer of /auth/login.
type LoginResponse struct {
	Token        string
	RefreshToken string
	User         domain.User
}

// ProfileOptions controls how a profile fetch reports a 401/403.
type ProfileOptions struct {
	// SkipUnauthorizedHandler keeps a rejected profile call from re-entering
	// the global unauthorized handler.
	SkipUnauthorizedHandler bool
}

// AuthAPI is the school API's authentication surface.
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Profile(ctx context.Context, opts ProfileOptions) (*domain.User, error)
	Logout(ctx context.Context) error
}

// RBACAPI returns the module grant of the current credential.
type RBACAPI interface {
	MyModules(ctx context.Context) (*domain.ModuleAccess, error)
}
