// Package watcher reports changes to Liger sources using OS-native file
// notifications.
package watcher

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch {
	case op&OpRemove != 0:
		return "remove"
	case op&OpRename != 0:
		return "rename"
	case op&OpCreate != 0:
		return "create"
	case op&OpWrite != 0:
		return "write"
	}
	return "none"
}

type Event struct {
	Path string
	Op   Op
}

// Watcher forwards fsnotify events for files with one of the watched
// extensions. Permission-only changes are dropped.
type Watcher struct {
	w    *fsnotify.Watcher
	exts map[string]bool
	evC  chan Event
	erC  chan error
	done chan struct{}
}

// New starts a watcher for files ending in any of exts. With no extensions
// every file is reported.
func New(exts ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &Watcher{
		w:    w,
		exts: make(map[string]bool, len(exts)),
		evC:  make(chan Event, 128),
		erC:  make(chan error, 1),
		done: make(chan struct{}),
	}
	for _, ext := range exts {
		fw.exts[ext] = true
	}
	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	defer close(fw.evC)
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if !fw.matches(ev.Name) {
				continue
			}
			op := convert(ev.Op)
			if op == 0 {
				continue
			}
			select {
			case fw.evC <- Event{Path: ev.Name, Op: op}:
			case <-fw.done:
				return
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
				// an unread error is already pending
			}
		case <-fw.done:
			return
		}
	}
}

func (fw *Watcher) matches(name string) bool {
	return len(fw.exts) == 0 || fw.exts[filepath.Ext(name)]
}

func convert(in fsnotify.Op) Op {
	var op Op
	if in&fsnotify.Create != 0 {
		op |= OpCreate
	}
	if in&fsnotify.Write != 0 {
		op |= OpWrite
	}
	if in&fsnotify.Remove != 0 {
		op |= OpRemove
	}
	if in&fsnotify.Rename != 0 {
		op |= OpRename
	}
	return op
}

// Events is closed once the watcher stops.
func (fw *Watcher) Events() <-chan Event { return fw.evC }
func (fw *Watcher) Errors() <-chan error { return fw.erC }
func (fw *Watcher) Add(dir string) error { return fw.w.Add(dir) }
func (fw *Watcher) WatchList() []string  { return fw.w.WatchList() }

func (fw *Watcher) Close() error {
	select {
	case <-fw.done:
		return nil
	default:
	}
	close(fw.done)
	return fw.w.Close()
}

// Debounce collects events until the stream has been quiet for d, then
// calls fn with the distinct paths that changed, sorted. It returns when
// ctx is done or events is closed; a pending batch is flushed on close.
func Debounce(ctx context.Context, events <-chan Event, d time.Duration, fn func(paths []string)) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		pending = make(map[string]bool)
		fn(paths)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-events:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				flush()
				return
			}
			pending[ev.Path] = true
			if timer == nil {
				timer = time.NewTimer(d)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(d)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			flush()
		}
	}
}
