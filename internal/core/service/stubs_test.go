package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

var errStorageDown = errors.New("storage down")

// memKV is an in-memory tier whose operations can be made to fail.
type memKV struct {
	mu      sync.Mutex
	data    map[string]string
	failGet bool
	failSet bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", false, errStorageDown
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errStorageDown
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memKV) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

func (m *memKV) holdsAnySessionKey() bool {
	for _, k := range sessionKeys {
		if m.has(k) {
			return true
		}
	}
	return false
}

type stubAuth struct {
	mu           sync.Mutex
	loginFn      func(ctx context.Context, req ports.LoginRequest) (*ports.LoginResponse, error)
	profileFn    func(ctx context.Context, opts ports.ProfileOptions) (*domain.User, error)
	logoutFn     func(ctx context.Context) error
	profileCalls int
	logoutCalls  int
}

func (s *stubAuth) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuth) Profile(ctx context.Context, opts ports.ProfileOptions) (*domain.User, error) {
	s.mu.Lock()
	s.profileCalls++
	s.mu.Unlock()
	return s.profileFn(ctx, opts)
}

func (s *stubAuth) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.logoutCalls++
	s.mu.Unlock()
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx)
}

func (s *stubAuth) profileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileCalls
}

type stubRBAC struct {
	myModulesFn func(ctx context.Context) (*domain.ModuleAccess, error)
	calls       int
}

func (s *stubRBAC) MyModules(ctx context.Context) (*domain.ModuleAccess, error) {
	s.calls++
	return s.myModulesFn(ctx)
}

// stubHTTP records every credential handed to the HTTP layer.
type stubHTTP struct {
	mu      sync.Mutex
	tokens  []string
	handler ports.UnauthorizedHandler
}

func (s *stubHTTP) SetAuthToken(token string) {
	s.mu.Lock()
	s.tokens = append(s.tokens, token)
	s.mu.Unlock()
}

func (s *stubHTTP) SetUnauthorizedHandler(h ports.UnauthorizedHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

func (s *stubHTTP) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tokens) == 0 {
		return ""
	}
	return s.tokens[len(s.tokens)-1]
}

type stubNav struct {
	mu    sync.Mutex
	paths []string
}

func (s *stubNav) Navigate(path string, _ bool) {
	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
}

func (s *stubNav) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) == 0 {
		return ""
	}
	return s.paths[len(s.paths)-1]
}

func (s *stubNav) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// stubAccess records refreshes and hands out a fixed grant.
type stubAccess struct {
	mu      sync.Mutex
	roles   []string
	current *domain.ModuleAccess
	resets  int
}

func (s *stubAccess) Refresh(_ context.Context, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = append(s.roles, role)
	grant := domain.AllowAll()
	s.current = &grant
}

func (s *stubAccess) Current() *domain.ModuleAccess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *stubAccess) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.resets++
}

func (s *stubAccess) refreshedRoles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.roles...)
}

// fakeClock is advanced by hand for debounce tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
