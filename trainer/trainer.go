// Package trainer runs the epoch loop: one training pass over the training
// loader followed by one gradient-free pass over the test loader, per epoch.
package trainer

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/fumitoshi0524/cifarnet/dataset"
	"github.com/fumitoshi0524/cifarnet/loss"
	"github.com/fumitoshi0524/cifarnet/metrics"
	"github.com/fumitoshi0524/cifarnet/nn"
	"github.com/fumitoshi0524/cifarnet/optim"
	"github.com/fumitoshi0524/cifarnet/tensor"
	"github.com/pkg/errors"
)

// Config captures the knobs of the loop.
type Config struct {
	// Epochs may be 0, in which case Run only reports completion.
	Epochs int
	// PrintEvery emits a TRAIN line on batch indices 0, PrintEvery, 2*PrintEvery...
	PrintEvery int
	// Loss defaults to loss.CrossEntropy.
	Loss loss.Func
	// Out receives metric lines; it defaults to os.Stdout.
	Out io.Writer
	// Logger receives operational messages; nil discards them.
	Logger *log.Logger
	RunID  string
}

// Trainer owns the model, optimizer and both loaders for a run.
type Trainer struct {
	cfg   Config
	model nn.Module
	opt   optim.Optimizer
	train *dataset.Loader
	test  *dataset.Loader
}

func New(cfg Config, mdl nn.Module, opt optim.Optimizer, train, test *dataset.Loader) (*Trainer, error) {
	if mdl == nil || opt == nil {
		return nil, errors.New("trainer: model and optimizer are required")
	}
	if train == nil || test == nil {
		return nil, errors.New("trainer: train and test loaders are required")
	}
	if cfg.Epochs < 0 {
		return nil, errors.Errorf("trainer: epochs must be >= 0 (got %d)", cfg.Epochs)
	}
	if cfg.PrintEvery <= 0 {
		cfg.PrintEvery = 100
	}
	if cfg.Loss == nil {
		cfg.Loss = loss.CrossEntropy
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Trainer{cfg: cfg, model: mdl, opt: opt, train: train, test: test}, nil
}

// Run trains and evaluates for every configured epoch, then prints the
// completion line. Any error aborts the run.
func (t *Trainer) Run(ctx context.Context) error {
	t.logf("run %s: %d epochs, %d train batches, %d test batches",
		t.cfg.RunID, t.cfg.Epochs, t.train.NumBatches(), t.test.NumBatches())
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		if _, err := t.TrainEpoch(ctx, epoch); err != nil {
			return err
		}
		if _, err := t.Evaluate(ctx, epoch); err != nil {
			return err
		}
	}
	fmt.Fprintln(t.cfg.Out, "Finished Training")
	return nil
}

// TrainEpoch performs one optimization pass over the training loader.
func (t *Trainer) TrainEpoch(ctx context.Context, epoch int) (metrics.Running, error) {
	var run metrics.Running
	ep := t.train.Start(ctx)
	defer ep.Close()
	for {
		b, ok := ep.Next()
		if !ok {
			break
		}
		batchLoss, correct, err := t.step(b)
		if err != nil {
			return run, errors.Wrapf(err, "epoch %d batch %d", epoch, b.Index)
		}
		run.Record(b.Len(), correct, batchLoss)
		if b.Index%t.cfg.PrintEvery == 0 {
			fmt.Fprintf(t.cfg.Out, "| TRAIN epoch= %d step= %d batch_loss= %s avg_acc= %s\n",
				epoch, run.Seen, formatMetric(run.LastLoss), formatMetric(run.Accuracy()))
		}
	}
	if err := ep.Err(); err != nil {
		return run, errors.Wrapf(err, "epoch %d train data", epoch)
	}
	return run, nil
}

func (t *Trainer) step(b dataset.Batch) (float64, int, error) {
	t.opt.ZeroGrad()
	scores, err := t.model.Forward(b.Images)
	if err != nil {
		return 0, 0, errors.Wrap(err, "forward")
	}
	l, err := t.cfg.Loss(scores, b.Labels)
	if err != nil {
		return 0, 0, errors.Wrap(err, "loss")
	}
	if err := l.Backward(); err != nil {
		return 0, 0, errors.Wrap(err, "backward")
	}
	if err := t.opt.Step(); err != nil {
		return 0, 0, errors.Wrap(err, "optimizer step")
	}
	correct, err := countCorrect(scores, b.Labels)
	if err != nil {
		return 0, 0, err
	}
	return l.Item(), correct, nil
}

// Evaluate runs the test loader once and prints the TEST line for epoch.
func (t *Trainer) Evaluate(ctx context.Context, epoch int) (metrics.Summary, error) {
	run, err := evaluate(ctx, t.model, t.test, t.cfg.Loss)
	if err != nil {
		return metrics.Summary{}, errors.Wrapf(err, "epoch %d eval", epoch)
	}
	sum := run.Snapshot(epoch)
	fmt.Fprintf(t.cfg.Out, "| TEST epoch= %d avg_loss= %s acc= %s\n", epoch, formatMetric(sum.AvgLoss), formatMetric(sum.Accuracy))
	return sum, nil
}

// Evaluate scores mdl on every batch of loader with cross entropy without
// recording gradients or touching parameters.
func Evaluate(ctx context.Context, mdl nn.Module, loader *dataset.Loader) (metrics.Running, error) {
	return evaluate(ctx, mdl, loader, loss.CrossEntropy)
}

func evaluate(ctx context.Context, mdl nn.Module, loader *dataset.Loader, lossFn loss.Func) (metrics.Running, error) {
	var run metrics.Running
	ep := loader.Start(ctx)
	defer ep.Close()
	err := tensor.NoGrad(func() error {
		for {
			b, ok := ep.Next()
			if !ok {
				return ep.Err()
			}
			scores, err := mdl.Forward(b.Images)
			if err != nil {
				return errors.Wrapf(err, "batch %d forward", b.Index)
			}
			l, err := lossFn(scores, b.Labels)
			if err != nil {
				return errors.Wrapf(err, "batch %d loss", b.Index)
			}
			correct, err := countCorrect(scores, b.Labels)
			if err != nil {
				return errors.Wrapf(err, "batch %d", b.Index)
			}
			run.Record(b.Len(), correct, l.Item())
		}
	})
	return run, err
}

func countCorrect(scores *tensor.Tensor, labels []int) (int, error) {
	pred, err := tensor.ArgMax(scores)
	if err != nil {
		return 0, errors.Wrap(err, "argmax")
	}
	return metrics.CountCorrect(pred, labels)
}

// formatMetric prints v in shortest round-trip form, always with a decimal
// point or exponent so counts and ratios read as floats (0.0, not 0).
func formatMetric(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if a := math.Abs(v); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (t *Trainer) logf(format string, args ...interface{}) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Printf(format, args...)
	}
}
