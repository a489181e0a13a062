package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
)

const (
	defaultDebounceWindow  = 800 * time.Millisecond
	defaultRefreshInterval = 5 * time.Minute
	defaultAuthPrefix      = "/auth/"
)

// CoordinatorConfig tunes the session coordinator.
type CoordinatorConfig struct {
	// PreferredTier is the tier bootstrap reads first.
	PreferredTier domain.Tier
	// DemoAuth skips the bootstrap profile check.
	DemoAuth bool
	// AuthPrefix marks requests whose 401/403 proves the session is dead.
	AuthPrefix string
	// APIBaseURL is stripped from absolute request URLs before AuthPrefix
	// is matched.
	APIBaseURL string
	// DebounceWindow coalesces bursts of unauthorized events.
	DebounceWindow time.Duration
	// RefreshInterval is the period of the module-access timer.
	RefreshInterval time.Duration
}

func (c CoordinatorConfig) withDefaults() CoordinatorConfig {
	if c.PreferredTier == "" {
		c.PreferredTier = domain.TierDurable
	}
	if c.AuthPrefix == "" {
		c.AuthPrefix = defaultAuthPrefix
	}
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = defaultDebounceWindow
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = defaultRefreshInterval
	}
	return c
}

// Session is a point-in-time copy of the coordinator state.
type Session struct {
	Authenticated bool                 `json:"authenticated"`
	Loading       bool                 `json:"loading"`
	User          *domain.User         `json:"user"`
	ModuleAccess  *domain.ModuleAccess `json:"module_access"`
	CampusID      string               `json:"campus_id,omitempty"`
}

// Coordinator owns the client session: which user is signed in, which
// credential the HTTP layer sends, and which modules the role may see.
//
// Every state change goes through mu. Background revalidations carry the
// epoch they were started under and may only commit while it is current.
type Coordinator struct {
	cfg      CoordinatorConfig
	basePath string
	store    *CredentialStore
	auth     ports.AuthAPI
	http     ports.HTTPSession
	nav      ports.Navigator
	access   ports.ModuleAccessRefresher
	log      zerolog.Logger
	now      func() time.Time

	// bgMu orders goAsync's bg.Add against Close.
	bgMu     sync.Mutex
	closed   bool
	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup

	bootOnce  sync.Once
	ready     chan struct{}
	readyOnce sync.Once

	mu               sync.Mutex
	user             *domain.User
	token            string
	authenticated    bool
	loading          bool
	campusID         string
	epoch            domain.Epoch
	lastUnauthorized time.Time
}

// NewCoordinator wires a coordinator. Call Start to hook it into the HTTP
// layer and Bootstrap to restore a stored session.
func NewCoordinator(
	cfg CoordinatorConfig,
	store *CredentialStore,
	auth ports.AuthAPI,
	httpSession ports.HTTPSession,
	nav ports.Navigator,
	access ports.ModuleAccessRefresher,
	log zerolog.Logger,
) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		cfg:      cfg.withDefaults(),
		basePath: apiBasePath(cfg.APIBaseURL),
		store:    store,
		auth:     auth,
		http:     httpSession,
		nav:      nav,
		access:   access,
		log:      log,
		now:      time.Now,
		bgCtx:    ctx,
		bgCancel: cancel,
		ready:    make(chan struct{}),
		loading:  true,
	}
}

// apiBasePath returns the path component of the API base URL without a
// trailing slash.
func apiBasePath(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

// Start registers the unauthorized handler with the HTTP layer.
func (c *Coordinator) Start() {
	c.http.SetUnauthorizedHandler(c.OnUnauthorized)
}

// Close deregisters the handler and waits for background work to settle.
func (c *Coordinator) Close() {
	c.http.SetUnauthorizedHandler(nil)
	c.bgMu.Lock()
	c.closed = true
	c.bgCancel()
	c.bgMu.Unlock()
	c.bg.Wait()
}

// Wait blocks until every background revalidation and refresh has returned.
func (c *Coordinator) Wait() {
	c.bg.Wait()
}

// Ready is closed once the first session check has finished.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Snapshot returns a copy of the current session.
func (c *Coordinator) Snapshot() Session {
	c.mu.Lock()
	s := Session{
		Authenticated: c.authenticated,
		Loading:       c.loading,
		CampusID:      c.campusID,
	}
	if c.user != nil {
		u := c.user.Clone()
		s.User = &u
		if s.CampusID == "" {
			s.CampusID = u.CampusID
		}
	}
	c.mu.Unlock()
	// A refresh still in flight during logout may land after Reset.
	if s.User != nil {
		s.ModuleAccess = c.access.Current()
	}
	return s
}

// Role returns the signed-in role, or "".
func (c *Coordinator) Role() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return ""
	}
	return c.user.Role
}

// HandleFocus refreshes module access when the UI window regains focus.
func (c *Coordinator) HandleFocus(ctx context.Context) {
	c.refreshKnownRole(ctx)
}

// HandleVisibility refreshes module access when the UI becomes visible.
func (c *Coordinator) HandleVisibility(ctx context.Context, visible bool) {
	if visible {
		c.refreshKnownRole(ctx)
	}
}

// Run refreshes module access on a fixed interval until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshKnownRole(ctx)
		}
	}
}

func (c *Coordinator) refreshKnownRole(ctx context.Context) {
	if role := c.Role(); role != "" {
		c.access.Refresh(ctx, role)
	}
}

// refreshAccessAsync refreshes module access off the caller's goroutine.
func (c *Coordinator) refreshAccessAsync(role string) {
	c.goAsync(func(ctx context.Context) {
		c.access.Refresh(ctx, role)
	})
}

// goAsync runs fn in the background unless Close has been called.
func (c *Coordinator) goAsync(fn func(ctx context.Context)) {
	c.bgMu.Lock()
	if c.closed {
		c.bgMu.Unlock()
		return
	}
	c.bg.Add(1)
	c.bgMu.Unlock()
	go func() {
		defer c.bg.Done()
		fn(c.bgCtx)
	}()
}

func (c *Coordinator) markReady() {
	c.readyOnce.Do(func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		close(c.ready)
	})
}

// nextEpochLocked starts a new epoch, invalidating every in-flight result.
// c.mu must be held.
func (c *Coordinator) nextEpochLocked() domain.Epoch {
	c.epoch++
	return c.epoch
}

// resetLocked drops the in-memory session. c.mu must be held.
func (c *Coordinator) resetLocked() {
	c.user = nil
	c.token = ""
	c.authenticated = false
	c.campusID = ""
}

// teardown clears memory, the outgoing credential, module access and both
// storage tiers. Memory is cleared first so readers never see a half state.
func (c *Coordinator) teardown(ctx context.Context) error {
	c.mu.Lock()
	c.resetLocked()
	c.nextEpochLocked()
	c.mu.Unlock()
	return c.releaseCredentials(ctx)
}

// releaseCredentials performs the side effects of a teardown whose memory
// half has already been committed.
func (c *Coordinator) releaseCredentials(ctx context.Context) error {
	c.http.SetAuthToken("")
	c.access.Reset()
	err := c.store.ClearSession(ctx)
	if campusErr := c.store.SetCampus(ctx, ""); campusErr != nil && err == nil {
		err = campusErr
	}
	if err != nil {
		c.log.Error().Err(err).Msg("failed to clear stored session")
	}
	return err
}
