// Package watch reports changes to a yw7 project file.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // file written or replaced
	ChangeRemoved                    // file deleted or renamed away
)

func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// Change is one debounced change of the watched file.
type Change struct {
	Kind ChangeKind
	File string
}

// Watcher monitors a single file for changes using fsnotify.
//
// The parent directory is watched rather than the file itself, since yWriter
// replaces the project file on save. Events for other files are ignored.
type Watcher struct {
	File     string
	Debounce time.Duration
	Changes  <-chan Change
	Errors   <-chan error

	changes chan Change
	errors  chan error
	done    chan struct{}
	started bool
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for file. A non-positive debounce means
// DefaultDebounce.
func NewWatcher(file string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ch := make(chan Change, 16)
	errs := make(chan error, 4)
	return &Watcher{
		File:     abs,
		Debounce: debounce,
		Changes:  ch,
		Errors:   errs,
		changes:  ch,
		errors:   errs,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		return err
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and its channels. It must be called at most once.
func (w *Watcher) Stop() {
	_ = w.watcher.Close()
	if w.started {
		<-w.done
	}
	close(w.changes)
	close(w.errors)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	tick := w.Debounce / 2
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.File {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.Debounce {
				pending = time.Time{}
				w.emit()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// emit reports the file's state once the burst of events has settled.
func (w *Watcher) emit() {
	kind := ChangeModified
	if _, err := os.Stat(w.File); err != nil {
		kind = ChangeRemoved
	}
	w.changes <- Change{Kind: kind, File: w.File}
}
