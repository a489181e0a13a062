// Package schoolapi is the agent's HTTP layer towards the remote school API.
// It carries the bearer credential and reports every 401/403 to the
// registered unauthorized handler.
package schoolapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
)

const (
	loginPath     = "/auth/login"
	profilePath   = "/auth/profile"
	logoutPath    = "/auth/logout"
	myModulesPath = "/rbac/my-modules"

	maxBodyBytes = 1 << 20
)

// Client implements ports.HTTPSession, ports.AuthAPI and ports.RBACAPI.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	mu           sync.RWMutex
	token        string
	unauthorized ports.UnauthorizedHandler
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) SetUnauthorizedHandler(h ports.UnauthorizedHandler) {
	c.mu.Lock()
	c.unauthorized = h
	c.mu.Unlock()
}

type loginResponse struct {
	Token        string      `json:"token"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         domain.User `json:"user"`
}

// Login never reports to the unauthorized handler: a rejected sign-in says
// nothing about the session currently held.
func (c *Client) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, loginPath, req, &out, true); err != nil {
		return nil, err
	}
	token := out.Token
	if token == "" {
		token = out.AccessToken
	}
	return &ports.LoginResponse{Token: token, RefreshToken: out.RefreshToken, User: out.User}, nil
}

func (c *Client) Profile(ctx context.Context, opts ports.ProfileOptions) (*domain.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, profilePath, nil, &raw, opts.SkipUnauthorizedHandler); err != nil {
		return nil, err
	}
	var wrapped struct {
		User *domain.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, &domain.APIError{Status: http.StatusOK, Data: raw, Err: fmt.Errorf("decode profile: %w", err)}
	}
	user := wrapped.User
	if user == nil {
		user = &domain.User{}
		if err := json.Unmarshal(raw, user); err != nil {
			return nil, &domain.APIError{Status: http.StatusOK, Data: raw, Err: fmt.Errorf("decode profile: %w", err)}
		}
	}
	// A 200 without a recognisable user proves nothing about the credential.
	if user.ID == "" && user.Role == "" {
		return nil, &domain.APIError{Status: http.StatusOK, Data: raw, Err: errors.New("profile response carried no user")}
	}
	return user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, logoutPath, nil, nil, true)
}

func (c *Client) MyModules(ctx context.Context) (*domain.ModuleAccess, error) {
	var access domain.ModuleAccess
	if err := c.do(ctx, http.MethodGet, myModulesPath, nil, &access, false); err != nil {
		return nil, err
	}
	return &access, nil
}

// do sends a JSON request and decodes a 2xx body into out. Non-2xx answers
// become *domain.APIError; 401/403 are also reported to the unauthorized
// handler unless skipHandler is set.
func (c *Client) do(ctx context.Context, method, path string, in, out any, skipHandler bool) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.APIError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.APIError{Status: resp.StatusCode, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &domain.APIError{Status: resp.StatusCode, Err: fmt.Errorf("%s %s", method, path)}
		if json.Valid(data) {
			apiErr.Data = data
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("school api request failed")
		if apiErr.IsUnauthorized() && !skipHandler {
			c.notifyUnauthorized(c.baseURL + path)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.APIError{Status: resp.StatusCode, Data: data, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}

func (c *Client) notifyUnauthorized(url string) {
	c.mu.RLock()
	h := c.unauthorized
	c.mu.RUnlock()
	if h != nil {
		h(domain.UnauthorizedEvent{URL: url})
	}
}
