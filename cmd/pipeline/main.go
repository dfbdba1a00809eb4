package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"tabpipe/internal/config"
	"tabpipe/internal/data"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func main() {
	configFile := flag.String("config", "", "Path to YAML pipeline configuration")
	source := flag.String("source", "disk", "Pipeline to run (memory|disk)")
	pattern := flag.String("pattern", "", "Glob of delimited input files (overrides config)")
	batchSize := flag.Int("batch-size", 0, "Batch size (overrides config)")
	mode := flag.String("mode", "", "Disk pipeline mode (train|eval)")
	epochs := flag.Int("epochs", 0, "Epochs for the memory pipeline (overrides config)")
	take := flag.Int("take", 0, "Stop after this many batches (required in train mode)")
	describe := flag.Bool("describe", false, "Print column statistics instead of batches")
	failFast := flag.Bool("fail-fast", false, "Abort on the first malformed row instead of skipping it")
	seed := flag.Int64("seed", 0, "Shuffle seed for train mode (0 = time based)")

	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	switch *source {
	case "memory":
		if *batchSize > 0 {
			cfg.Memory.BatchSize = *batchSize
		}
		if *epochs > 0 {
			cfg.Memory.Epochs = *epochs
		}
		runMemory(cfg, *take)
	case "disk":
		if *pattern != "" {
			cfg.Disk.Pattern = *pattern
		}
		if *batchSize > 0 {
			cfg.Disk.BatchSize = *batchSize
		}
		if *mode != "" {
			cfg.Disk.Mode = *mode
		}
		if *failFast {
			cfg.Disk.OnParseError = string(data.FailFast)
		}
		if *seed != 0 {
			cfg.Disk.Seed = *seed
		}
		if cfg.Disk.Pattern == "" {
			fmt.Println("Usage:")
			fmt.Println("  Disk pipeline:   go run ./cmd/pipeline -pattern 'toy_data/taxi-train*' -batch-size 2 -mode eval")
			fmt.Println("  Memory pipeline: go run ./cmd/pipeline -source memory -epochs 2 -batch-size 3")
			fmt.Println("\nOptions:")
			flag.PrintDefaults()
			os.Exit(1)
		}
		runDisk(cfg, *take, *describe)
	default:
		log.Fatalf("Unknown source %q (want memory or disk)", *source)
	}
}

func runMemory(cfg *config.Config, take int) {
	X, Y := cfg.SyntheticXY()
	ds, err := data.NewMemoryDataset(X, Y, cfg.Memory.Epochs, cfg.Memory.BatchSize)
	if err != nil {
		log.Fatalf("Failed to create dataset: %v", err)
	}

	fmt.Printf("Memory pipeline: %d points, %d epochs, batch size %d -> %d batches\n",
		len(X), cfg.Memory.Epochs, cfg.Memory.BatchSize, ds.Len())

	it := ds.Iterator()
	if take > 0 {
		it = data.Take(it, take)
	}
	err = data.ForEach(it, func(step int, b data.XYBatch) error {
		fmt.Printf("%s x: %v y: %v\n", cyan(fmt.Sprintf("[%d]", step)), b.X, b.Y)
		return nil
	})
	if err != nil {
		log.Fatalf("%s %v", red("✗"), err)
	}
	fmt.Println(green("✓"), "done")
}

func runDisk(cfg *config.Config, take int, describe bool) {
	schema, err := cfg.Schema()
	if err != nil {
		log.Fatalf("Invalid schema: %v", err)
	}
	opts := cfg.CSVOptions()
	if opts.Mode == data.ModeTrain && take <= 0 {
		log.Fatalf("Train mode repeats forever; pass -take to bound it")
	}

	skipped := 0
	opts.OnSkip = func(*data.ParseError) { skipped++ }
	opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	ds, err := data.NewCSVDataset(cfg.Disk.Pattern, schema, opts)
	if err != nil {
		log.Fatalf("Failed to create dataset: %v", err)
	}
	fmt.Printf("Disk pipeline (%s): %d file(s), batch size %d\n", opts.Mode, len(ds.Files()), opts.BatchSize)

	it := ds.Iterator()
	if take > 0 {
		it = data.Take(it, take)
	}

	if describe {
		batches, err := data.Collect(it)
		if err != nil {
			log.Fatalf("%s %v", red("✗"), err)
		}
		printSummary(data.Describe(batches))
	} else {
		err = data.ForEach(it, func(step int, b data.Batch) error {
			if err := data.ValidateBatch(b, opts.Label, opts.Unwanted); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", cyan(fmt.Sprintf("[%d]", step)), b)
			return nil
		})
		if err != nil {
			log.Fatalf("%s %v", red("✗"), err)
		}
	}

	if skipped > 0 {
		fmt.Println(yellow(fmt.Sprintf("! skipped %d malformed row(s)", skipped)))
	}
	fmt.Println(green("✓"), "done")
}

func printSummary(s data.Summary) {
	fmt.Printf("\n%d batches, %d rows\n", s.Batches, s.Rows)
	if s.Batches == 0 {
		return
	}
	fmt.Printf("%-20s %-7s %8s %14s %14s %14s %9s\n", "Column", "Type", "Count", "Min", "Max", "Mean", "Distinct")
	row := func(cs data.ColumnStats) {
		if cs.Kind == data.KindString {
			fmt.Printf("%-20s %-7s %8d %14s %14s %14s %9d\n", cs.Name, cs.Kind, cs.Count, "-", "-", "-", cs.Distinct)
			return
		}
		fmt.Printf("%-20s %-7s %8d %14s %14s %14s %9d\n", cs.Name, cs.Kind, cs.Count,
			cs.Min.StringFixed(4), cs.Max.StringFixed(4), cs.Mean.StringFixed(4), cs.Distinct)
	}
	row(s.Label)
	for _, cs := range s.Features {
		row(cs)
	}
}
