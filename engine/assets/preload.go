package assets

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

var (
	ErrNoWorkers         = errors.New("attempting to create a preloader with less than 1 worker")
	ErrNegativeQueueSize = errors.New("attempting to create a preloader with a negative queue size")
	ErrPreloaderClosed   = errors.New("preloader already closed")
	errNoDecoder         = errors.New("preloader has no decoder")
)

// Decoder is the subset of an image loader the preloader needs. It is called
// from several goroutines at once.
type Decoder interface {
	Decode(path string) (*metadata.ImageData, error)
}

type DecodeResult struct {
	Path  string
	Image *metadata.ImageData
	Err   error
}

// Preloader decodes images on a pool of workers. Results are kept until the
// engine drains them on the main thread, where the GPU upload happens.
type Preloader struct {
	decoder Decoder
	jobs    chan string
	wg      sync.WaitGroup

	// guards sends on jobs against Close
	lifecycle sync.RWMutex
	isClosed  bool

	mutex   sync.Mutex
	results []DecodeResult
	pending int
}

func NewPreloader(decoder Decoder, workers, queueSize int) (*Preloader, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, ErrNegativeQueueSize
	}
	p := &Preloader{
		decoder: decoder,
		jobs:    make(chan string, queueSize),
	}
	p.start(workers)
	return p, nil
}

func (p *Preloader) start(workers int) {
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for path := range p.jobs {
				p.finish(p.decode(path))
			}
		}()
	}
}

func (p *Preloader) decode(path string) DecodeResult {
	if p.decoder == nil {
		return DecodeResult{Path: path, Err: errNoDecoder}
	}
	img, err := p.decoder.Decode(path)
	if err != nil {
		core.LogWarn("preloading %s: %s", path, err)
	}
	return DecodeResult{Path: path, Image: img, Err: err}
}

func (p *Preloader) finish(r DecodeResult) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.results = append(p.results, r)
}

// Submit queues path for decoding. It blocks while the queue is full.
func (p *Preloader) Submit(path string) error {
	p.lifecycle.RLock()
	defer p.lifecycle.RUnlock()
	if p.isClosed {
		return ErrPreloaderClosed
	}

	p.mutex.Lock()
	p.pending++
	p.mutex.Unlock()

	p.jobs <- path
	return nil
}

// Drain passes every finished decode to f and returns how many there were.
// It never blocks on running decodes.
func (p *Preloader) Drain(f func(DecodeResult)) int {
	p.mutex.Lock()
	results := p.results
	p.results = nil
	p.pending -= len(results)
	p.mutex.Unlock()

	for _, r := range results {
		f(r)
	}
	return len(results)
}

// Pending counts submitted paths not drained yet.
func (p *Preloader) Pending() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.pending
}

// Close waits for the queued decodes to finish. Undrained results are dropped.
func (p *Preloader) Close() {
	p.lifecycle.Lock()
	if p.isClosed {
		p.lifecycle.Unlock()
		return
	}
	p.isClosed = true
	close(p.jobs)
	p.lifecycle.Unlock()

	p.wg.Wait()
}
