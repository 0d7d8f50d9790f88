package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/tessera/engine/core"
)

const changeBuffer = 64

var ErrWatcherClosed = errors.New("asset watcher already closed")

// AssetWatcher reports files that changed under a directory tree. It runs
// its own goroutine and never touches engine state; changed paths are
// posted on a channel the engine drains between frames.
type AssetWatcher struct {
	root     string
	fsnotify *fsnotify.Watcher
	changes  chan string
	done     chan struct{}

	mutex    sync.Mutex
	isClosed bool
	wg       sync.WaitGroup
}

// NewAssetWatcher watches root and every directory below it.
func NewAssetWatcher(root string) (*AssetWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	aw := &AssetWatcher{
		root:     filepath.Clean(root),
		fsnotify: fsWatch,
		changes:  make(chan string, changeBuffer),
		done:     make(chan struct{}),
	}
	if err := aw.watchRecursive(aw.root); err != nil {
		fsWatch.Close()
		return nil, err
	}

	aw.wg.Add(1)
	go aw.start()
	core.LogInfo("watching assets under %s", aw.root)
	return aw, nil
}

func (aw *AssetWatcher) Root() string {
	return aw.root
}

// Changes delivers cleaned paths of created or modified files.
func (aw *AssetWatcher) Changes() <-chan string {
	return aw.changes
}

// Drain hands every pending change to fn without blocking.
func (aw *AssetWatcher) Drain(fn func(path string)) int {
	n := 0
	for {
		select {
		case p, ok := <-aw.changes:
			if !ok {
				return n
			}
			fn(p)
			n++
		default:
			return n
		}
	}
}

// Close stops the watch goroutine. Later calls return ErrWatcherClosed.
func (aw *AssetWatcher) Close() error {
	aw.mutex.Lock()
	if aw.isClosed {
		aw.mutex.Unlock()
		return ErrWatcherClosed
	}
	aw.isClosed = true
	aw.mutex.Unlock()

	close(aw.done)
	aw.wg.Wait()
	return aw.fsnotify.Close()
}

func (aw *AssetWatcher) start() {
	defer aw.wg.Done()
	defer close(aw.changes)
	for {
		select {
		case e, ok := <-aw.fsnotify.Events:
			if !ok {
				return
			}
			aw.handleEvent(e)

		case err, ok := <-aw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-aw.done:
			return
		}
	}
}

func (aw *AssetWatcher) handleEvent(e fsnotify.Event) {
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		// a removed path may have been a watched directory
		_ = aw.fsnotify.Remove(e.Name)
		return
	}
	if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
		return
	}

	if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := aw.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch new directory %s: %s", e.Name, err)
			}
		}
		return
	}

	path := filepath.Clean(e.Name)
	select {
	case aw.changes <- path:
	case <-aw.done:
	default:
		core.LogWarn("asset change queue full, dropping %s", path)
	}
}

// watchRecursive adds path and every directory below it to the watch list.
func (aw *AssetWatcher) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return aw.fsnotify.Add(walkPath)
		}
		return nil
	})
}
