package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cache"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/driver"
)

var benchFlags struct {
	iterations  int
	concurrency int
	cached      bool
}

var benchCmd = &cobra.Command{
	Use:   "bench <file>",
	Short: "Benchmark the compile pipeline",
	Long: `Compile one source file repeatedly and report throughput and
latency percentiles.

The pipeline runs uncached by default, so every iteration measures the
full lex, parse, transform, and generate cost. With --cached the first
compile warms an in-memory cache and every iteration measures the hit
path instead.

Examples:
  # Ten thousand iterations, single worker
  callisto bench program.lisp

  # Parallel compile load
  callisto bench program.lisp --iterations 50000 --concurrency 8

  # Measure the cache hit path
  callisto bench program.lisp --cached`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchFlags.iterations, "iterations", 10000, "total compilations")
	benchCmd.Flags().IntVar(&benchFlags.concurrency, "concurrency", 1, "concurrent workers")
	benchCmd.Flags().BoolVar(&benchFlags.cached, "cached", false, "measure cache hits instead of full pipeline runs")
}

func runBench(cmd *cobra.Command, args []string) error {
	setupCLILogging()

	if benchFlags.iterations <= 0 {
		return cli.NewCommandError("bench", fmt.Errorf("iterations must be positive"))
	}
	if benchFlags.concurrency <= 0 {
		benchFlags.concurrency = 1
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return cli.NewCommandError("bench", fmt.Errorf("failed to read source: %w", err))
	}
	source := string(data)

	var c cache.Cache
	if benchFlags.cached {
		c = cache.NewMemoryCache(16)
		defer c.Close()
	}
	drv := driver.New(c, nil, nil, nil, nil)

	// One untimed pass rejects bad input before the loop starts; with
	// --cached it also warms the cache.
	ctx := context.Background()
	warm, err := drv.Compile(ctx, driver.Input{Source: source, FileName: args[0]})
	if err != nil {
		return cli.NewCommandError("bench", err)
	}

	fmt.Println("Callisto Bench")
	fmt.Println("==============")
	fmt.Printf("Source: %s (%d bytes, %d tokens)\n", args[0], len(source), warm.TokenCount)
	fmt.Printf("Iterations: %d\n", benchFlags.iterations)
	fmt.Printf("Concurrency: %d\n", benchFlags.concurrency)
	if benchFlags.cached {
		fmt.Println("Mode: cache hits")
	} else {
		fmt.Println("Mode: full pipeline")
	}
	fmt.Println()

	results := runCompileLoad(ctx, drv, source, args[0])
	printBenchResults(results)
	return nil
}

type benchResults struct {
	iterations int
	failed     int
	duration   time.Duration
	latencies  []time.Duration
}

// runCompileLoad spreads the iterations over the configured workers.
// Workers claim iteration numbers from a shared counter, so the total
// is exact regardless of how the scheduler interleaves them.
func runCompileLoad(ctx context.Context, drv *driver.Driver, source, fileName string) *benchResults {
	total := benchFlags.iterations
	results := &benchResults{
		iterations: total,
		latencies:  make([]time.Duration, 0, total),
	}

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(total))

	var (
		mu        sync.Mutex
		next      int64
		completed int64
	)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < benchFlags.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if atomic.AddInt64(&next, 1) > int64(total) {
					return
				}

				iterStart := time.Now()
				_, err := drv.Compile(ctx, driver.Input{Source: source, FileName: fileName})
				latency := time.Since(iterStart)

				mu.Lock()
				results.latencies = append(results.latencies, latency)
				if err != nil {
					results.failed++
				}
				mu.Unlock()

				progress.Update(atomic.AddInt64(&completed, 1))
			}
		}()
	}
	wg.Wait()
	progress.Finish()

	results.duration = time.Since(start)
	return results
}

func printBenchResults(results *benchResults) {
	succeeded := results.iterations - results.failed

	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Compilations: %d total, %d succeeded, %d failed\n",
		results.iterations, succeeded, results.failed)
	fmt.Printf("Duration:     %.2fs\n", results.duration.Seconds())
	if results.duration > 0 {
		fmt.Printf("Throughput:   %.0f compiles/s\n",
			float64(results.iterations)/results.duration.Seconds())
	}

	if len(results.latencies) == 0 {
		return
	}

	min, mean, median, p95, p99, max := latencyPercentiles(results.latencies)
	fmt.Println()
	fmt.Println("Latency:")
	fmt.Printf("  Min:    %v\n", min)
	fmt.Printf("  Mean:   %v\n", mean)
	fmt.Printf("  Median: %v\n", median)
	fmt.Printf("  p95:    %v\n", p95)
	fmt.Printf("  p99:    %v\n", p99)
	fmt.Printf("  Max:    %v\n", max)
}

func latencyPercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, l := range sorted {
		sum += l
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[percentileIndex(len(sorted), 0.95)]
	p99 = sorted[percentileIndex(len(sorted), 0.99)]
	return
}

func percentileIndex(n int, q float64) int {
	idx := int(float64(n) * q)
	if idx >= n {
		idx = n - 1
	}
	return idx
}
