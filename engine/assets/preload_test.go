package assets

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

type countingDecoder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (d *countingDecoder) Decode(path string) (*metadata.ImageData, error) {
	d.mu.Lock()
	d.calls[path]++
	d.mu.Unlock()
	if path == "broken.png" {
		return nil, errors.New("corrupt image")
	}
	return &metadata.ImageData{ChannelCount: 4, Width: 1, Height: 1, Pixels: make([]uint8, 4)}, nil
}

func drainAll(t *testing.T, p *Preloader, want int) []DecodeResult {
	t.Helper()
	var got []DecodeResult
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < want {
		if time.Now().After(deadline) {
			t.Fatalf("drained %d results, want %d", len(got), want)
		}
		p.Drain(func(r DecodeResult) { got = append(got, r) })
		time.Sleep(time.Millisecond)
	}
	return got
}

func TestPreloaderDecodesOnWorkers(t *testing.T) {
	d := &countingDecoder{calls: map[string]int{}}
	p, err := NewPreloader(d, 3, 2)
	if err != nil {
		t.Fatalf("NewPreloader: %v", err)
	}
	defer p.Close()

	paths := []string{"a.png", "b.png", "c.png", "broken.png", "d.png"}
	for _, path := range paths {
		if err := p.Submit(path); err != nil {
			t.Fatalf("Submit(%s): %v", path, err)
		}
	}
	results := drainAll(t, p, len(paths))

	var names []string
	for _, r := range results {
		names = append(names, r.Path)
		if r.Path == "broken.png" {
			if r.Err == nil {
				t.Error("broken.png decoded without error")
			}
		} else if r.Err != nil || r.Image == nil {
			t.Errorf("%s: image %v, err %v", r.Path, r.Image, r.Err)
		}
	}
	sort.Strings(names)
	sort.Strings(paths)
	for i := range paths {
		if names[i] != paths[i] {
			t.Fatalf("results = %v, want %v", names, paths)
		}
	}
	if p.Pending() != 0 {
		t.Errorf("Pending = %d after draining everything", p.Pending())
	}
}

func TestPreloaderClose(t *testing.T) {
	p, err := NewPreloader(&countingDecoder{calls: map[string]int{}}, 1, 0)
	if err != nil {
		t.Fatalf("NewPreloader: %v", err)
	}
	p.Close()
	p.Close()
	if err := p.Submit("a.png"); !errors.Is(err, ErrPreloaderClosed) {
		t.Errorf("Submit after Close = %v, want ErrPreloaderClosed", err)
	}
}

func TestNewPreloaderValidation(t *testing.T) {
	if _, err := NewPreloader(nil, 0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("zero workers = %v, want ErrNoWorkers", err)
	}
	if _, err := NewPreloader(nil, 1, -1); !errors.Is(err, ErrNegativeQueueSize) {
		t.Errorf("negative queue = %v, want ErrNegativeQueueSize", err)
	}
}
