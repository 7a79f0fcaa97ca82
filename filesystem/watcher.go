package filesystem

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Export some types and values so that user need not import underlying package explicitly
type WatchEvent = fsnotify.Event
type WatchOp = fsnotify.Op

const (
	WatchOpCreate = fsnotify.Create
	WatchOpWrite  = fsnotify.Write
	WatchOpRemove = fsnotify.Remove
	WatchOpRename = fsnotify.Rename
	WatchOpChmod  = fsnotify.Chmod
)

var (
	ErrNonExistentWatch = fsnotify.ErrNonExistentWatch
	ErrEventOverflow    = fsnotify.ErrEventOverflow
)

// DefaultSettleDuration is how long a Watcher waits for a burst of
// events on the same file to stop before publishing them.
const DefaultSettleDuration = 200 * time.Millisecond

// Watcher reports changes of watched files and directories.
// The game rewrites a save through several file operations, so events
// are held until no new event arrives for the settle duration, and each
// distinct event is published once.
type Watcher interface {
	Watch(filepath string) error
	UnWatch(filepath string) error
	Events() <-chan WatchEvent
	Errors() <-chan error
	Close() error
}

type watcherImpl struct {
	w            *fsnotify.Watcher
	pathResolver PathResolver
	settle       time.Duration

	events chan WatchEvent
	errors chan error
	done   chan struct{}
}

func (wi *watcherImpl) eventLoop() {
	defer func() {
		close(wi.events)
		close(wi.errors)
	}()
	settleTimer := time.NewTimer(wi.settle)
	if !settleTimer.Stop() {
		<-settleTimer.C
	}
	pending := make([]WatchEvent, 0, 4)
	seen := make(map[WatchEvent]bool)
	for {
		select {
		case <-wi.done:
			return
		case ev, ok := <-wi.w.Events:
			if !ok {
				return
			}
			if !seen[ev] {
				seen[ev] = true
				pending = append(pending, ev)
			}
			if !settleTimer.Stop() {
				// timer may have fired and been drained already.
				select {
				case <-settleTimer.C:
				default:
				}
			}
			settleTimer.Reset(wi.settle)
		case err, ok := <-wi.w.Errors:
			if !ok {
				return
			}
			select {
			case wi.errors <- err:
			case <-wi.done:
				return
			}
		case <-settleTimer.C:
			// publish in arrival order.
			for _, ev := range pending {
				select {
				case wi.events <- ev:
				case <-wi.done:
					return
				}
			}
			pending = pending[:0]
			seen = make(map[WatchEvent]bool)
		}
	}
}

func (wi *watcherImpl) Close() error {
	select {
	case <-wi.done:
	default:
		close(wi.done)
	}
	return wi.w.Close()
}

func (wi *watcherImpl) Watch(filepath string) error {
	p, err := wi.pathResolver.ResolvePath(filepath)
	if err != nil {
		return fmt.Errorf("failed to Watch(%s): %w", filepath, err)
	}
	return wi.w.Add(p)
}

func (wi *watcherImpl) UnWatch(filepath string) error {
	p, err := wi.pathResolver.ResolvePath(filepath)
	if err != nil {
		return fmt.Errorf("failed to UnWatch(%s): %w", filepath, err)
	}
	return wi.w.Remove(p)
}

func (wi *watcherImpl) Events() <-chan WatchEvent { return wi.events }
func (wi *watcherImpl) Errors() <-chan error      { return wi.errors }

func newWatcher(pr PathResolver) (Watcher, error) {
	return newWatcherSettle(pr, DefaultSettleDuration)
}

func newWatcherSettle(pr PathResolver, settle time.Duration) (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("NewWatcher failed by backend fsnotify.NewWatcher(): %w", err)
	}
	wi := &watcherImpl{
		w:            w,
		pathResolver: pr,
		settle:       settle,
		events:       make(chan WatchEvent),
		errors:       make(chan error),
		done:         make(chan struct{}),
	}
	go wi.eventLoop()
	return wi, nil
}
