package dataset

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
)

// LoaderConfig controls how a Loader slices a dataset into batches.
type LoaderConfig struct {
	BatchSize int
	// Shuffle draws a fresh order from Rand at the start of every epoch.
	// Without it batches follow dataset order every time.
	Shuffle bool
	Rand    *rand.Rand
	// Prefetch is how many batches the producer may build ahead of the
	// consumer.
	Prefetch int
}

// Loader yields restartable, finite epochs of batches over a Dataset.
type Loader struct {
	ds  *Dataset
	cfg LoaderConfig
}

func NewLoader(ds *Dataset, cfg LoaderConfig) (*Loader, error) {
	if ds == nil || ds.Count() == 0 {
		return nil, errors.New("loader needs a non-empty dataset")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.Errorf("batch size must be > 0 (got %d)", cfg.BatchSize)
	}
	if cfg.Shuffle && cfg.Rand == nil {
		return nil, errors.New("shuffling loader needs a random source")
	}
	if cfg.Prefetch < 0 {
		cfg.Prefetch = 0
	}
	return &Loader{ds: ds, cfg: cfg}, nil
}

// Dataset returns the underlying dataset.
func (l *Loader) Dataset() *Dataset {
	return l.ds
}

// BatchSize returns the configured batch size.
func (l *Loader) BatchSize() int {
	return l.cfg.BatchSize
}

// NumBatches is the number of batches per epoch, counting a final partial one.
func (l *Loader) NumBatches() int {
	return (l.ds.Count() + l.cfg.BatchSize - 1) / l.cfg.BatchSize
}

func (l *Loader) order() []int {
	if l.cfg.Shuffle {
		return l.cfg.Rand.Perm(l.ds.Count())
	}
	order := make([]int, l.ds.Count())
	for i := range order {
		order[i] = i
	}
	return order
}

// Epoch is one pass over the dataset. Read batches with Next until it
// reports false, then check Err.
type Epoch struct {
	batches <-chan Batch
	errc    <-chan error
	cancel  context.CancelFunc
	err     error
}

// Start begins a new epoch. The sample order is fixed before Start returns,
// so callers sharing the random source observe a reproducible sequence. A
// producer goroutine builds batches in order; Close stops it early.
func (l *Loader) Start(ctx context.Context) *Epoch {
	order := l.order()
	ctx, cancel := context.WithCancel(ctx)
	batches := make(chan Batch, l.cfg.Prefetch)
	errc := make(chan error, 1)
	go func() {
		defer close(batches)
		defer close(errc)
		for idx, start := 0, 0; start < len(order); idx, start = idx+1, start+l.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				errc <- err
				return
			}
			end := start + l.cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			b, err := l.ds.Batch(order[start:end])
			if err != nil {
				errc <- errors.Wrapf(err, "build batch %d", idx)
				return
			}
			b.Index = idx
			select {
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			case batches <- b:
			}
		}
	}()
	return &Epoch{batches: batches, errc: errc, cancel: cancel}
}

// Next blocks until the next batch is available. It returns false once the
// epoch is exhausted or failed.
func (e *Epoch) Next() (Batch, bool) {
	b, ok := <-e.batches
	if !ok {
		if err, has := <-e.errc; has {
			e.err = err
		}
		return Batch{}, false
	}
	return b, true
}

// Err returns the error that ended the epoch early, if any.
func (e *Epoch) Err() error {
	return e.err
}

// Close releases the producer. It is safe to call more than once.
func (e *Epoch) Close() {
	e.cancel()
	for range e.batches {
	}
}
