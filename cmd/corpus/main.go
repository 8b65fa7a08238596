// Command corpus provides utilities around the corpus dataset library,
// including a synthetic apply benchmark.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/corpus/pkg/dataset"
	"github.com/ajitpratap0/corpus/pkg/logger"
	"github.com/ajitpratap0/corpus/pkg/metrics"
)

var version = "0.1.0"

// BenchFlags contains the benchmark configuration
type BenchFlags struct {
	Rows     int
	Fields   int
	Workers  int
	LogLevel string
	Progress bool
}

// DefaultBenchFlags returns sensible defaults for the benchmark
func DefaultBenchFlags() *BenchFlags {
	return &BenchFlags{
		Rows:     1_000_000,
		Fields:   4,
		Workers:  runtime.NumCPU(),
		LogLevel: "info",
		Progress: true,
	}
}

func main() {
	root := &cobra.Command{
		Use:   "corpus",
		Short: "Corpus - columnar container for ML training examples",
		Long: `Corpus stages and transforms machine-learning training examples in a
columnar, row-addressable container with a parallel apply engine.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Corpus v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	flags := DefaultBenchFlags()
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic apply benchmark",
		Long: `Build a synthetic dataset and run an apply over it, reporting elapsed
time, row throughput and process memory usage.

Example:
  corpus bench --rows 1000000 --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Rows = viper.GetInt("rows")
			flags.Fields = viper.GetInt("fields")
			flags.Workers = viper.GetInt("workers")
			flags.LogLevel = viper.GetString("log-level")
			flags.Progress = viper.GetBool("progress")
			return runBench(flags)
		},
	}

	benchCmd.Flags().IntVar(&flags.Rows, "rows", flags.Rows, "Number of synthetic rows to generate")
	benchCmd.Flags().IntVar(&flags.Fields, "fields", flags.Fields, "Number of fields per row")
	benchCmd.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "Number of apply workers (0 = sequential)")
	benchCmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	benchCmd.Flags().BoolVar(&flags.Progress, "progress", flags.Progress, "Report progress while the benchmark runs")

	viper.SetEnvPrefix("CORPUS")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(benchCmd.Flags()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root.AddCommand(benchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBench(flags *BenchFlags) error {
	if err := logger.Init(logger.Config{
		Level:    flags.LogLevel,
		Encoding: "console",
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.WithValue(context.Background(), logger.OperationKey, "bench")
	log := logger.WithContext(ctx)
	log.Info("building synthetic dataset",
		zap.Int("rows", flags.Rows),
		zap.Int("fields", flags.Fields))

	ds, err := buildDataset(flags.Rows, flags.Fields)
	if err != nil {
		return err
	}
	metrics.SetDatasetRows("bench", ds.Len())

	cfg := dataset.DefaultApplyConfig()
	cfg.Workers = flags.Workers
	cfg.ShowProgress = flags.Progress
	cfg.Description = "bench"

	start := time.Now()
	if _, err := ds.ApplyField(func(v any) (any, error) {
		return v.(int64) * 2, nil
	}, "f0", cfg); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println("=== Corpus Apply Benchmark ===")
	fmt.Printf("Rows:       %d\n", flags.Rows)
	fmt.Printf("Fields:     %d\n", flags.Fields)
	fmt.Printf("Workers:    %d\n", flags.Workers)
	fmt.Printf("Elapsed:    %v\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/second\n", float64(flags.Rows)/elapsed.Seconds())

	if rss, err := processRSS(); err == nil {
		fmt.Printf("Memory:     %.1f MB RSS\n", float64(rss)/(1024*1024))
	}
	return nil
}

// buildDataset generates a dataset with the given shape: int64 field f0
// plus string fields f1..f(fields-1)
func buildDataset(rows, fields int) (*dataset.Dataset, error) {
	cols := make(map[string][]any, fields)

	f0 := make([]any, rows)
	for i := range f0 {
		f0[i] = int64(i)
	}
	cols["f0"] = f0

	for f := 1; f < fields; f++ {
		values := make([]any, rows)
		for i := range values {
			values[i] = "row-" + strconv.Itoa(i)
		}
		cols["f"+strconv.Itoa(f)] = values
	}
	return dataset.FromColumns(cols)
}

// processRSS returns the current process resident set size in bytes
func processRSS() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}
