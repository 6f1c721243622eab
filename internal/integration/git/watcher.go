package git

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a repository's git directory and invalidates the
// repository when HEAD, the index or refs change. Bursts of events, as
// produced by a commit or rebase, are coalesced into one notification.
type Watcher struct {
	repo  *Repository
	fsw   *fsnotify.Watcher
	delay time.Duration

	mu        sync.Mutex
	callbacks []func()
	timer     *time.Timer
	closed    bool

	fired    atomic.Int64
	errCount atomic.Int64

	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the coalescing delay. Default 100ms.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// watchedDirs are the git directory entries whose changes matter to
// status, branch and graph queries.
var watchedDirs = []string{"", "refs", filepath.Join("refs", "heads"), filepath.Join("refs", "remotes"), filepath.Join("refs", "tags")}

// NewWatcher starts watching repo's git directory.
func NewWatcher(repo *Repository, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		repo:    repo,
		fsw:     fsw,
		delay:   100 * time.Millisecond,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	added := 0
	for _, dir := range watchedDirs {
		if err := fsw.Add(filepath.Join(repo.GitDir(), dir)); err == nil {
			added++
		}
	}
	if added == 0 {
		_ = fsw.Close()
		return nil, ErrNotRepository
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// OnChange registers fn to run after each coalesced change, once the
// repository has been invalidated. Callbacks run on the watcher's
// goroutine; hosts post them to their own loop.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, fn)
	w.mu.Unlock()
}

// Fired returns how many coalesced notifications have been delivered.
func (w *Watcher) Fired() int64 {
	return w.fired.Load()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.closedWg.Wait()
	return w.fsw.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if relevant(ev) {
				w.schedule()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.errCount.Add(1)
			w.repo.logger.Warn().Err(err).Msg("repository watch error")
		}
	}
}

// relevant filters out lock files and object writes, which git creates
// and removes during every operation without changing visible state.
func relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasSuffix(base, ".lock") {
		return false
	}
	return base != "objects" && base != "logs"
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	callbacks := append([]func(){}, w.callbacks...)
	w.mu.Unlock()

	w.repo.Invalidate()
	w.repo.publishEvent("git.repository.changed", nil)
	w.fired.Add(1)

	for _, fn := range callbacks {
		fn()
	}
}
