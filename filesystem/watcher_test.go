package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsRewrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Profile1.sav")
	if err := os.WriteFile(target, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher, err := newWatcherSettle(NopPathResolver{}, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()
	if err := watcher.Watch(dir); err != nil {
		t.Fatal(err)
	}

	// the game rewrites through the atomic store.
	for i := 0; i < 3; i++ {
		if err := WriteFile(Desktop, target, []byte("v2")); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var seen []WatchEvent
	for {
		select {
		case ev, ok := <-watcher.Events():
			if !ok {
				t.Fatal("events closed")
			}
			seen = append(seen, ev)
			if filepath.Clean(ev.Name) == target && ev.Op&(WatchOpCreate|WatchOpWrite) != 0 {
				return
			}
		case err := <-watcher.Errors():
			t.Fatal(err)
		case <-ctx.Done():
			t.Fatal("no event for the rewritten save:", seen)
		}
	}
}
