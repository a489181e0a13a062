package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
)

const demoIssuer = "portal-agent-demo"

// demoModules is the grant handed to non-wildcard roles in demo mode.
var demoModules = map[string]domain.ModuleAccess{
	domain.RoleAdmin: {
		AllowModules:   []string{"students", "teachers", "classes", "attendance", "reports", "fees"},
		AllowSubroutes: []string{"students/import", "reports/export"},
	},
	domain.RoleTeacher: {
		AllowModules:   []string{"classes", "attendance", "grades"},
		AllowSubroutes: []string{"attendance/mark"},
	},
}

// DemoBackend stands in for the school API when the agent runs offline. It
// derives the role from the identifier, signs its own tokens and answers
// profile and module requests from them.
type DemoBackend struct {
	secret       []byte
	passwordHash []byte
	tokenTTL     time.Duration

	mu           sync.Mutex
	token        string
	unauthorized ports.UnauthorizedHandler
}

// NewDemoBackend builds a demo backend. When passwordHash is non-empty every
// login secret must match it.
func NewDemoBackend(secret, passwordHash string, tokenTTL time.Duration) *DemoBackend {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &DemoBackend{
		secret:       []byte(secret),
		passwordHash: []byte(passwordHash),
		tokenTTL:     tokenTTL,
	}
}

func (d *DemoBackend) SetAuthToken(token string) {
	d.mu.Lock()
	d.token = token
	d.mu.Unlock()
}

func (d *DemoBackend) SetUnauthorizedHandler(h ports.UnauthorizedHandler) {
	d.mu.Lock()
	d.unauthorized = h
	d.mu.Unlock()
}

// DemoRole maps identifier patterns to a role.
func DemoRole(identifier string) string {
	id := strings.ToLower(identifier)
	switch {
	case strings.Contains(id, "owner"), strings.Contains(id, "super"):
		return domain.RoleOwner
	case strings.Contains(id, "admin"):
		return domain.RoleAdmin
	case strings.Contains(id, "student"):
		return domain.RoleStudent
	case strings.Contains(id, "parent"):
		return domain.RoleParent
	default:
		return domain.RoleTeacher
	}
}

func (d *DemoBackend) Login(_ context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	identifier := req.Email
	if identifier == "" {
		identifier = req.Phone
	}
	if identifier == "" {
		identifier = req.Username
	}
	if len(d.passwordHash) > 0 {
		if bcrypt.CompareHashAndPassword(d.passwordHash, []byte(req.Password)) != nil {
			return nil, &domain.APIError{
				Status: http.StatusUnauthorized,
				Data:   []byte(`{"message":"invalid credentials"}`),
				Err:    domain.ErrInvalidCredentials,
			}
		}
	}

	user := domain.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Phone:    req.Phone,
		Username: req.Username,
		Name:     identifier,
		Role:     DemoRole(identifier),
		CampusID: "demo-campus",
	}
	token, err := d.sign(user)
	if err != nil {
		return nil, err
	}
	return &ports.LoginResponse{Token: token, RefreshToken: uuid.NewString(), User: user}, nil
}

func (d *DemoBackend) Profile(_ context.Context, opts ports.ProfileOptions) (*domain.User, error) {
	user, err := d.parse(d.currentToken())
	if err != nil {
		apiErr := &domain.APIError{Status: http.StatusUnauthorized, Err: err}
		if !opts.SkipUnauthorizedHandler {
			d.notifyUnauthorized("/auth/profile")
		}
		return nil, apiErr
	}
	return user, nil
}

func (d *DemoBackend) Logout(context.Context) error {
	return nil
}

func (d *DemoBackend) MyModules(context.Context) (*domain.ModuleAccess, error) {
	user, err := d.parse(d.currentToken())
	if err != nil {
		d.notifyUnauthorized("/rbac/my-modules")
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Err: err}
	}
	grant, ok := demoModules[user.Role]
	if !ok {
		grant = domain.DenyAll()
	}
	return &grant, nil
}

func (d *DemoBackend) currentToken() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token
}

func (d *DemoBackend) notifyUnauthorized(url string) {
	d.mu.Lock()
	h := d.unauthorized
	d.mu.Unlock()
	if h != nil {
		h(domain.UnauthorizedEvent{URL: url})
	}
}

type demoClaims struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	CampusID string `json:"campus_id,omitempty"`
	jwt.RegisteredClaims
}

func (d *DemoBackend) sign(u domain.User) (string, error) {
	now := time.Now()
	claims := demoClaims{
		Email:    u.Email,
		Phone:    u.Phone,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		CampusID: u.CampusID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    demoIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d.tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(d.secret)
	if err != nil {
		return "", fmt.Errorf("sign demo token: %w", err)
	}
	return signed, nil
}

func (d *DemoBackend) parse(token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}
	var claims demoClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return d.secret, nil
	}, jwt.WithIssuer(demoIssuer))
	if err != nil {
		return nil, fmt.Errorf("parse demo token: %w", err)
	}
	if !tkn.Valid {
		return nil, errors.New("demo token invalid")
	}
	return &domain.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Phone:    claims.Phone,
		Username: claims.Username,
		Name:     claims.Name,
		Role:     claims.Role,
		CampusID: claims.CampusID,
	}, nil
}
