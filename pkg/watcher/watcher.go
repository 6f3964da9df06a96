package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat cadence when polling mode is active.
const DefaultPollInterval = 2 * time.Second

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Event is one observed change to a tracked file. Removed is set when the
// file disappeared; the viewer treats that as a reload trigger too, since
// source selection may now prefer a different file.
type Event struct {
	Path    string
	Removed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long rapid writes are coalesced before one event
// is delivered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat cadence for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithForcePoll skips fsnotify entirely.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// WithOnEvent sets a callback invoked for every delivered event, in
// addition to the Events channel.
func WithOnEvent(fn func(Event)) Option {
	return func(w *Watcher) { w.onEvent = fn }
}

// WithOnError sets a callback for watch machinery errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithSiblings tracks additional basenames resolved in the primary file's
// directory. Siblings need not exist yet; their appearance is itself a
// change.
func WithSiblings(names ...string) Option {
	return func(w *Watcher) {
		for _, s := range names {
			base := filepath.Base(s)
			w.tracked[base] = filepath.Join(w.dir, base)
		}
	}
}

// fingerprint is the stat identity used to decide whether a file changed.
type fingerprint struct {
	exists bool
	mtime  time.Time
	size   int64
}

func fingerprintOf(path string) fingerprint {
	info, err := os.Stat(path)
	if err != nil {
		return fingerprint{}
	}
	return fingerprint{exists: true, mtime: info.ModTime(), size: info.Size()}
}

func (f fingerprint) differs(g fingerprint) bool {
	return f.exists != g.exists || f.size != g.size || !f.mtime.Equal(g.mtime)
}

// Watcher tracks one data directory's source files: the selected primary
// source plus its sibling companions (the JSON loader reads contacts.json
// alongside emails.json, and either one changing invalidates the dataset).
// One fsnotify watch on the directory covers every tracked file and stays
// correct across atomic replace-by-rename writes; remote filesystems and
// CN_FORCE_POLLING fall back to stat polling.
type Watcher struct {
	dir          string
	tracked      map[string]string // basename -> absolute path
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onEvent      func(Event)
	onError      func(error)

	mu        sync.RWMutex
	prints    map[string]fingerprint // path -> last seen identity
	pending   map[string]bool        // paths changed since the last delivery
	removed   map[string]bool
	fsType    FilesystemType
	polling   bool
	started   bool
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	ctx       context.Context
	cancel    context.CancelFunc
	events    chan Event
}

// NewWatcher tracks the primary source file, plus any companions added
// via WithSiblings.
func NewWatcher(primary string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(primary)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:          filepath.Dir(abs),
		tracked:      map[string]string{filepath.Base(abs): abs},
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onEvent:      func(Event) {},
		onError:      func(error) {},
		prints:       make(map[string]fingerprint),
		pending:      make(map[string]bool),
		removed:      make(map[string]bool),
		events:       make(chan Event, 8),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start snapshots the tracked files and begins delivering events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.debouncer = NewDebouncer(w.debounce)

	for _, path := range w.tracked {
		w.prints[path] = fingerprintOf(path)
	}

	w.fsType = detectFilesystemTypeFunc(w.dir)
	w.polling = w.forcePoll ||
		isRemoteFilesystem(w.fsType) ||
		envBool("CN_FORCE_POLLING") || envBool("CN_FORCE_POLL")

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(w.dir)
		}
		if err != nil {
			if fsw != nil {
				fsw.Close()
			}
			w.polling = true
		} else {
			w.fsWatcher = fsw
			go w.runFsnotify(fsw)
		}
	}
	if w.polling {
		go w.runPolling()
	}

	w.started = true
	return nil
}

// Stop ends delivery. The Events channel is left open so a reader blocked
// on it neither panics nor spins; delivery simply ceases.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Events returns the debounced change stream.
func (w *Watcher) Events() <-chan Event { return w.events }

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Tracked returns the absolute paths under watch, sorted.
func (w *Watcher) Tracked() []string {
	paths := make([]string, 0, len(w.tracked))
	for _, p := range w.tracked {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IsPolling reports whether stat polling is active instead of fsnotify.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// FilesystemType returns the classification of the watched directory.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the stat cadence used in polling mode.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// mark queues a change for the next debounced delivery.
func (w *Watcher) mark(path string, removed bool) {
	w.mu.Lock()
	w.pending[path] = true
	if removed {
		w.removed[path] = true
	} else {
		delete(w.removed, path)
	}
	w.mu.Unlock()
	w.debouncer.Trigger(w.deliver)
}

// deliver flushes the pending set as events, one per file, newest stat
// identity recorded so polling does not re-report the same write.
func (w *Watcher) deliver() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	batch := make([]Event, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, Event{Path: path, Removed: w.removed[path]})
		w.prints[path] = fingerprintOf(path)
	}
	w.pending = make(map[string]bool)
	w.removed = make(map[string]bool)
	w.mu.Unlock()

	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	for _, ev := range batch {
		w.onEvent(ev)
		select {
		case w.events <- ev:
		default:
			// A slow reader only needs to learn that something changed;
			// dropping the overflow keeps delivery non-blocking.
		}
	}
}

func (w *Watcher) runFsnotify(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			path, tracked := w.tracked[filepath.Base(event.Name)]
			if !tracked {
				continue
			}
			switch {
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename is how atomic writers replace the file; stat
				// decides whether a new incarnation is already there.
				w.mark(path, !fingerprintOf(path).exists)
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				w.mark(path, false)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			for _, path := range w.tracked {
				now := fingerprintOf(path)
				w.mu.RLock()
				last := w.prints[path]
				w.mu.RUnlock()
				if !now.differs(last) {
					continue
				}
				w.mark(path, !now.exists)
			}
		}
	}
}
