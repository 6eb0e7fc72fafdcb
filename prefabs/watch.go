package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports edited prefab, script and sound files. Events carries the
// changed path; bursts of writes to one file are collapsed.
type Watcher struct {
	watcher *fsnotify.Watcher
	exts    map[string]struct{}
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// DefaultWatchExtensions covers prefabs, cue scripts and every decodable
// sound format.
var DefaultWatchExtensions = []string{".yaml", ".yml", ".tengo", ".wav", ".mp3", ".ogg", ".oga", ".aif", ".aiff"}

func NewWatcher(dirs ...string) (*Watcher, error) {
	return NewWatcherFor(DefaultWatchExtensions, dirs...)
}

// NewWatcherFor watches dirs for files with one of exts.
func NewWatcherFor(exts []string, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		exts:    make(map[string]struct{}, len(exts)),
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, ext := range exts {
		watcher.exts[strings.ToLower(ext)] = struct{}{}
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// Drain returns the pending changed paths without blocking.
func (w *Watcher) Drain() []string {
	var paths []string
	for {
		select {
		case p, ok := <-w.Events:
			if !ok {
				return paths
			}
			paths = append(paths, p)
		default:
			return paths
		}
	}
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.Watches(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < watchDebounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			default:
				log.Warnf("Watcher queue full, dropping %s", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				log.Warnf("Watcher: %v", err)
			}
		case <-w.closeCh:
			return
		}
	}
}

// Watches reports whether changes to path are reported.
func (w *Watcher) Watches(path string) bool {
	_, ok := w.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

func IsSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func IsScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
