package scripts

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long the watcher waits for a script file to stop
// changing before reporting it.
const DefaultSettle = 200 * time.Millisecond

// Watcher reports changed script namespaces of a directory.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	settle   time.Duration
	onChange func(namespace string)
	log      zerolog.Logger

	timers  map[string]*time.Timer
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	mu      sync.Mutex
}

// NewWatcher watches dir and calls onChange with the namespace of every
// script that was written, created, removed or renamed. Bursts of events
// for one namespace are coalesced.
func NewWatcher(dir string, settle time.Duration, onChange func(string), log zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	log.Debug().Str("dir", dir).Msg("script watcher initialized")

	return &Watcher{
		watcher:  w,
		dir:      dir,
		settle:   settle,
		onChange: onChange,
		log:      log,
		timers:   make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, Extension) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.schedule(strings.TrimSuffix(filepath.Base(ev.Name), Extension))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("script watcher error")
		}
	}
}

func (w *Watcher) schedule(namespace string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopCh:
		return
	default:
	}

	if t, ok := w.timers[namespace]; ok {
		t.Stop()
	}
	w.timers[namespace] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, namespace)
		w.mu.Unlock()

		w.log.Debug().Str("namespace", namespace).Msg("script changed")
		w.onChange(namespace)
	})
}

// Stop stops the watcher. Pending notifications are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	for ns, t := range w.timers {
		t.Stop()
		delete(w.timers, ns)
	}
	w.mu.Unlock()

	if started {
		<-w.doneCh
	}
	return w.watcher.Close()
}
