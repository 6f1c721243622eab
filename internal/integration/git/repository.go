package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/dshills/gitpanel/internal/event/loop"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// Repository runs queries and orchestrated operations against one
// working tree. Mutating operations are serialized; queries may run
// concurrently.
type Repository struct {
	path   string
	gitDir string

	facade *Facade

	// opMu serializes mutating operations so each orchestrator's steps
	// run back to back.
	opMu sync.Mutex

	// cache holds parsed query results; nil when caching is disabled.
	cache *gocache.Cache

	// generation advances whenever repository state may have changed.
	generation loop.Generation

	matcher     *UpstreamMatcher
	pushRemote  string
	graphLimit  int
	reflogCount int

	// Event publishing
	eventBus EventPublisher
	logger   zerolog.Logger
}

type repositoryConfig struct {
	facade      *Facade
	cacheTTL    time.Duration
	pushRemote  string
	matcher     *UpstreamMatcher
	graphLimit  int
	reflogCount int
	eventBus    EventPublisher
	logger      zerolog.Logger
}

// openRepository opens an existing git repository.
func openRepository(path string, cfg repositoryConfig) (*Repository, error) {
	gitDir, err := resolveGitDir(path)
	if err != nil {
		return nil, err
	}

	r := &Repository{
		path:        path,
		gitDir:      gitDir,
		facade:      cfg.facade,
		matcher:     cfg.matcher,
		pushRemote:  cfg.pushRemote,
		graphLimit:  cfg.graphLimit,
		reflogCount: cfg.reflogCount,
		eventBus:    cfg.eventBus,
		logger:      cfg.logger.With().Str("repository", path).Logger(),
	}
	if r.matcher == nil {
		r.matcher = defaultMatcher
	}
	if r.pushRemote == "" {
		r.pushRemote = "origin"
	}
	if r.graphLimit <= 0 {
		r.graphLimit = 100
	}
	if r.reflogCount <= 0 {
		r.reflogCount = 50
	}
	if cfg.cacheTTL > 0 {
		r.cache = gocache.New(cfg.cacheTTL, 2*cfg.cacheTTL)
	}
	return r, nil
}

// resolveGitDir returns the git directory for a working tree root.
// .git can be a directory or, for linked worktrees, a "gitdir:" file.
func resolveGitDir(path string) (string, error) {
	gitPath := filepath.Join(path, ".git")
	info, err := os.Stat(gitPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("stat .git: %w", err)
	}
	if info.IsDir() {
		return gitPath, nil
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return "", fmt.Errorf("read .git file: %w", err)
	}
	dir, ok := bytes.CutPrefix(bytes.TrimSpace(content), []byte("gitdir:"))
	if !ok {
		return "", ErrNotRepository
	}
	resolved := strings.TrimSpace(string(dir))
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(path, resolved)
	}
	return resolved, nil
}

// discoverRepository finds the repository root from any path within it.
func discoverRepository(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}

	current := absPath
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrRepositoryNotFound
		}
		current = parent
	}
}

// Path returns the repository root path.
func (r *Repository) Path() string {
	return r.path
}

// GitDir returns the git directory.
func (r *Repository) GitDir() string {
	return r.gitDir
}

// Generation returns the repository's staleness counter. Callers capture
// Current() before an async query and drop the result when it is no
// longer current.
func (r *Repository) Generation() *loop.Generation {
	return &r.generation
}

// Facade returns the command facade the repository runs through.
func (r *Repository) Facade() *Facade {
	return r.facade
}

// Git starts `git <args>` in the repository without waiting.
func (r *Repository) Git(ctx context.Context, args []string, opts process.Options) *process.Future {
	opts.Dir = r.path
	return r.facade.Git(ctx, args, opts)
}

// exec runs git and waits. The error is non-nil only for spawn failures,
// timeouts and cancellation; a non-zero exit is reported in the Result.
func (r *Repository) exec(ctx context.Context, opts process.Options, args ...string) (process.Result, error) {
	return r.Git(ctx, args, opts).Wait(ctx)
}

// output runs git and returns stdout, or a *CommandError on non-zero exit.
func (r *Repository) output(ctx context.Context, args ...string) (string, error) {
	res, err := r.exec(ctx, process.Options{}, args...)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", commandError(res, nil)
	}
	return res.Stdout, nil
}

// commandError builds a CommandError from a failed result.
func commandError(res process.Result, kind error) *CommandError {
	return &CommandError{
		Args:     res.Command,
		ExitCode: res.ExitCode,
		Output:   CombinedOutput(res),
		Err:      kind,
	}
}

// fullOutput joins stdout and stderr for pattern scans; git splits
// diagnostics between the two streams depending on the subcommand.
func fullOutput(res process.Result) string {
	return res.Stdout + "\n" + res.Stderr
}

// cached returns the cached value for key or computes and stores it.
func cached[T any](r *Repository, key string, fn func() (T, error)) (T, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}
	}
	gen := r.generation.Current()
	v, err := fn()
	if err != nil {
		return v, err
	}
	// Results computed across an invalidation may already be stale.
	if r.cache != nil && r.generation.IsCurrent(gen) {
		r.cache.SetDefault(key, v)
	}
	return v, nil
}

// Invalidate drops cached query results and advances the generation.
func (r *Repository) Invalidate() {
	if r.cache != nil {
		r.cache.Flush()
	}
	r.generation.Next()
}

// mutated is called after any operation that may have changed state.
func (r *Repository) mutated(eventType string, data map[string]any) {
	r.Invalidate()
	r.publishEvent(eventType, data)
}

// close closes the repository.
func (r *Repository) close() {
	if r.cache != nil {
		r.cache.Flush()
	}
}

// publishEvent publishes an event if an event bus is configured.
func (r *Repository) publishEvent(eventType string, data map[string]any) {
	if r.eventBus != nil {
		if data == nil {
			data = make(map[string]any)
		}
		data["repository"] = r.path
		data["timestamp"] = time.Now().UnixMilli()
		r.eventBus.Publish(eventType, data)
	}
}
