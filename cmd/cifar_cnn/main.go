package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/fumitoshi0524/cifarnet/config"
	"github.com/fumitoshi0524/cifarnet/dataset"
	"github.com/fumitoshi0524/cifarnet/device"
	"github.com/fumitoshi0524/cifarnet/loss"
	"github.com/fumitoshi0524/cifarnet/model"
	"github.com/fumitoshi0524/cifarnet/optim"
	"github.com/fumitoshi0524/cifarnet/tensor"
	"github.com/fumitoshi0524/cifarnet/trainer"
	"github.com/google/uuid"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (defaults are used when empty)")
	dataDir := flag.String("data-dir", "", "CIFAR-10 cache directory")
	epochs := flag.Int("epochs", -1, "Number of epochs (0 only reports completion)")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	lr := flag.Float64("lr", 0, "SGD learning rate")
	printEvery := flag.Int("print-every", 0, "Print a TRAIN line every N batches")
	seed := flag.Int64("seed", 0, "PRNG seed")
	prefetch := flag.Int("prefetch", 0, "Batches prepared ahead of the loop")
	workers := flag.Int("workers", 0, "Kernel goroutines (0 uses every core)")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	var epochsOverride *int
	if *epochs >= 0 {
		epochsOverride = epochs
	}
	cfg.ApplyOverrides(config.Overrides{
		BatchSize:    *batchSize,
		Epochs:       epochsOverride,
		LearningRate: *lr,
		PrintEvery:   *printEvery,
		Seed:         *seed,
		DataDir:      *dataDir,
		Prefetch:     *prefetch,
		Workers:      *workers,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	runID := uuid.New().String()
	log.Printf("run=%s batch_size=%d epochs=%d lr=%v seed=%d", runID, cfg.BatchSize, cfg.Epochs, cfg.LearningRate, cfg.Seed)

	dev := device.Detect().WithWorkers(cfg.Workers)
	if err := device.Place(dev); err != nil {
		log.Fatalf("place device: %v", err)
	}
	log.Printf("device=%s", dev)

	trainDS, testDS, err := dataset.LoadCIFAR10(dataset.CIFAROptions{
		Dir:    cfg.DataDir,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("load cifar10: %v", err)
	}
	log.Printf("train=%d test=%d", trainDS.Count(), testDS.Count())
	if n := trainDS.Classes(); n > cfg.Classes {
		log.Fatalf("dataset has %d classes but the model is configured for %d", n, cfg.Classes)
	}

	trainLoader, err := dataset.NewLoader(trainDS, dataset.LoaderConfig{
		BatchSize: cfg.BatchSize,
		Shuffle:   true,
		Rand:      rand.New(rand.NewSource(cfg.Seed)),
		Prefetch:  cfg.Prefetch,
	})
	if err != nil {
		log.Fatalf("train loader: %v", err)
	}
	testLoader, err := dataset.NewLoader(testDS, dataset.LoaderConfig{
		BatchSize: cfg.BatchSize,
		Prefetch:  cfg.Prefetch,
	})
	if err != nil {
		log.Fatalf("test loader: %v", err)
	}

	mdl, err := model.New(tensor.NewRand(cfg.Seed), cfg.Classes)
	if err != nil {
		log.Fatalf("build model: %v", err)
	}
	opt := optim.NewSGDWithConfig(mdl.Parameters(), cfg.SGD())

	tr, err := trainer.New(trainer.Config{
		Epochs:     cfg.Epochs,
		PrintEvery: cfg.PrintEvery,
		Loss:       loss.CrossEntropy,
		Out:        os.Stdout,
		Logger:     log.Default(),
		RunID:      runID,
	}, mdl, opt, trainLoader, testLoader)
	if err != nil {
		log.Fatalf("trainer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tr.Run(ctx); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}
