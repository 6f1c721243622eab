package git

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// EventPublisher publishes git events.
type EventPublisher interface {
	Publish(eventType string, data map[string]any)
}

// Manager opens repositories and shares one Facade between them.
type Manager struct {
	mu       sync.RWMutex
	repos    map[string]*Repository
	watchers map[string]*Watcher
	closed   atomic.Bool

	facade *Facade
	config ManagerConfig

	// Event publishing
	eventBus EventPublisher
	logger   zerolog.Logger
}

// ManagerConfig configures a git manager.
type ManagerConfig struct {
	// Runner executes git and gh. Required.
	Runner Runner

	// GitPath and GhPath override the binaries.
	GitPath string
	GhPath  string

	// Env holds extra KEY=value pairs for every invocation.
	Env []string

	// CacheTTL is how long read queries are cached. Zero disables caching.
	CacheTTL time.Duration

	// PushRemote is the remote used when setting an upstream. Defaults to "origin".
	PushRemote string

	// NoUpstreamPatterns extend DefaultNoUpstreamPatterns.
	NoUpstreamPatterns []string

	// GraphLimit bounds the branch graph. Defaults to 100.
	GraphLimit int

	// ReflogCount bounds reflog queries. Defaults to 50.
	ReflogCount int

	// Watch starts a Watcher on every opened repository.
	Watch bool

	// WatchDebounce coalesces bursts of .git changes.
	WatchDebounce time.Duration

	// EventBus for publishing git events.
	EventBus EventPublisher

	// Logger receives debug and error logs. The zero value discards.
	Logger zerolog.Logger
}

// NewManager creates a new git manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.PushRemote == "" {
		cfg.PushRemote = "origin"
	}
	if cfg.GraphLimit <= 0 {
		cfg.GraphLimit = 100
	}
	if cfg.ReflogCount <= 0 {
		cfg.ReflogCount = 50
	}
	logger := cfg.Logger

	facadeOpts := []FacadeOption{
		WithGitPath(cfg.GitPath),
		WithGhPath(cfg.GhPath),
		WithFacadeLogger(logger),
	}
	if len(cfg.Env) > 0 {
		facadeOpts = append(facadeOpts, WithEnv(cfg.Env...))
	}

	return &Manager{
		repos:    make(map[string]*Repository),
		watchers: make(map[string]*Watcher),
		facade:   NewFacade(cfg.Runner, facadeOpts...),
		config:   cfg,
		eventBus: cfg.EventBus,
		logger:   logger,
	}
}

// Facade returns the shared command facade.
func (m *Manager) Facade() *Facade {
	return m.facade
}

// Open opens a repository at the given path.
// The path must be the repository root (containing .git).
func (m *Manager) Open(path string) (*Repository, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if repo, ok := m.repos[path]; ok {
		return repo, nil
	}

	repo, err := openRepository(path, repositoryConfig{
		facade:      m.facade,
		cacheTTL:    m.config.CacheTTL,
		pushRemote:  m.config.PushRemote,
		matcher:     NewUpstreamMatcher(m.config.NoUpstreamPatterns...),
		graphLimit:  m.config.GraphLimit,
		reflogCount: m.config.ReflogCount,
		eventBus:    m.eventBus,
		logger:      m.logger,
	})
	if err != nil {
		return nil, err
	}

	if m.config.Watch {
		w, err := NewWatcher(repo, WithDebounce(m.config.WatchDebounce))
		if err != nil {
			m.logger.Warn().Err(err).Str("repository", path).Msg("watch disabled")
		} else {
			m.watchers[path] = w
		}
	}

	m.repos[path] = repo
	m.publishEvent("git.repository.opened", map[string]any{"repository": path})
	return repo, nil
}

// Discover finds and opens the repository containing the given path.
// It walks up the directory tree looking for a .git entry.
func (m *Manager) Discover(path string) (*Repository, error) {
	if m.closed.Load() {
		return nil, ErrManagerClosed
	}

	root, err := discoverRepository(path)
	if err != nil {
		return nil, err
	}

	return m.Open(root)
}

// IsRepository checks if the path is inside a git repository.
func (m *Manager) IsRepository(path string) bool {
	_, err := discoverRepository(path)
	return err == nil
}

// Repositories returns the paths of all open repositories.
func (m *Manager) Repositories() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.repos))
	for p := range m.repos {
		paths = append(paths, p)
	}
	return paths
}

// Close closes the manager, its watchers and all open repositories.
func (m *Manager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for path, w := range m.watchers {
		if err := w.Close(); err != nil {
			m.logger.Warn().Err(err).Str("repository", path).Msg("close watcher")
		}
	}
	for _, repo := range m.repos {
		repo.close()
	}
	m.repos = make(map[string]*Repository)
	m.watchers = make(map[string]*Watcher)

	return nil
}

// publishEvent publishes an event if an event bus is configured.
func (m *Manager) publishEvent(eventType string, data map[string]any) {
	if m.eventBus != nil {
		if data == nil {
			data = make(map[string]any)
		}
		data["timestamp"] = time.Now().UnixMilli()
		m.eventBus.Publish(eventType, data)
	}
}
