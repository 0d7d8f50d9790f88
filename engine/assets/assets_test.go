package assets

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/tessera/engine/core"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func waitForChange(t *testing.T, aw *AssetWatcher, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case p := <-aw.Changes():
			if p == want {
				return
			}
		case <-timeout:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func TestAssetWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	aw, err := NewAssetWatcher(dir)
	if err != nil {
		t.Fatalf("NewAssetWatcher: %v", err)
	}
	defer aw.Close()

	path := filepath.Join(dir, "crate.png")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForChange(t, aw, path)
}

func TestAssetWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	aw, err := NewAssetWatcher(dir)
	if err != nil {
		t.Fatalf("NewAssetWatcher: %v", err)
	}
	defer aw.Close()

	sub := filepath.Join(dir, "textures")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// give the watch goroutine a moment to register the directory
	path := filepath.Join(sub, "tile.png")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
		if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
			t.Fatal(err)
		}
		got := false
		aw.Drain(func(p string) {
			if p == path {
				got = true
			}
		})
		if got {
			return
		}
	}
	t.Fatalf("no change reported for %s", path)
}

func TestAssetWatcherDrainIsNonBlocking(t *testing.T) {
	aw, err := NewAssetWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetWatcher: %v", err)
	}
	defer aw.Close()

	if n := aw.Drain(func(string) {}); n != 0 {
		t.Errorf("Drain = %d, want 0 on an idle tree", n)
	}
}

func TestAssetWatcherClose(t *testing.T) {
	aw, err := NewAssetWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetWatcher: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := aw.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close = %v, want ErrWatcherClosed", err)
	}
	if _, ok := <-aw.Changes(); ok {
		t.Error("changes channel still open after Close")
	}
}

func TestAssetWatcherMissingRoot(t *testing.T) {
	if _, err := NewAssetWatcher(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("watching a missing directory should fail")
	}
}
