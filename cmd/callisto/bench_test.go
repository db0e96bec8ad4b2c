package main

import (
	"path/filepath"
	"testing"
	"time"
)

func resetBenchFlags() {
	benchFlags.iterations = 10000
	benchFlags.concurrency = 1
	benchFlags.cached = false
}

func TestRunBenchSmallLoad(t *testing.T) {
	resetBenchFlags()
	benchFlags.iterations = 50
	benchFlags.concurrency = 2

	tmpDir := t.TempDir()
	src := writeSourceFile(t, tmpDir, "program.lisp", "(add 2 (subtract 4 3))")

	if err := runBench(nil, []string{src}); err != nil {
		t.Fatalf("runBench() error: %v", err)
	}
}

func TestRunBenchCached(t *testing.T) {
	resetBenchFlags()
	benchFlags.iterations = 25
	benchFlags.cached = true

	tmpDir := t.TempDir()
	src := writeSourceFile(t, tmpDir, "program.lisp", "(add 1 2)")

	if err := runBench(nil, []string{src}); err != nil {
		t.Fatalf("runBench() error: %v", err)
	}
}

func TestRunBenchBadSource(t *testing.T) {
	resetBenchFlags()
	benchFlags.iterations = 10

	tmpDir := t.TempDir()
	src := writeSourceFile(t, tmpDir, "broken.lisp", "(add 2")

	if err := runBench(nil, []string{src}); err == nil {
		t.Fatal("runBench() with broken source should return error")
	}
}

func TestRunBenchMissingFile(t *testing.T) {
	resetBenchFlags()

	missing := filepath.Join(t.TempDir(), "missing.lisp")
	if err := runBench(nil, []string{missing}); err == nil {
		t.Fatal("runBench() with missing file should return error")
	}
}

func TestRunBenchInvalidIterations(t *testing.T) {
	resetBenchFlags()
	benchFlags.iterations = 0

	tmpDir := t.TempDir()
	src := writeSourceFile(t, tmpDir, "program.lisp", "(add 1 2)")

	if err := runBench(nil, []string{src}); err == nil {
		t.Fatal("runBench() with zero iterations should return error")
	}
}

func TestLatencyPercentiles(t *testing.T) {
	latencies := []time.Duration{
		5 * time.Millisecond,
		1 * time.Millisecond,
		3 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
	}

	min, mean, median, p95, p99, max := latencyPercentiles(latencies)

	if min != 1*time.Millisecond {
		t.Errorf("min = %v, want 1ms", min)
	}
	if max != 5*time.Millisecond {
		t.Errorf("max = %v, want 5ms", max)
	}
	if mean != 3*time.Millisecond {
		t.Errorf("mean = %v, want 3ms", mean)
	}
	if median != 3*time.Millisecond {
		t.Errorf("median = %v, want 3ms", median)
	}
	if p95 != 5*time.Millisecond {
		t.Errorf("p95 = %v, want 5ms", p95)
	}
	if p99 != 5*time.Millisecond {
		t.Errorf("p99 = %v, want 5ms", p99)
	}

	// The input slice must not be reordered.
	if latencies[0] != 5*time.Millisecond {
		t.Errorf("latencies[0] = %v, input was mutated", latencies[0])
	}
}

func TestLatencyPercentilesEmpty(t *testing.T) {
	min, mean, median, p95, p99, max := latencyPercentiles(nil)
	for name, got := range map[string]time.Duration{
		"min": min, "mean": mean, "median": median,
		"p95": p95, "p99": p99, "max": max,
	} {
		if got != 0 {
			t.Errorf("%s = %v, want 0 for empty input", name, got)
		}
	}
}

func TestPercentileIndex(t *testing.T) {
	tests := []struct {
		n    int
		q    float64
		want int
	}{
		{100, 0.95, 95},
		{100, 0.99, 99},
		{10, 0.99, 9},
		{1, 0.95, 0},
		{1, 1.0, 0},
	}
	for _, tt := range tests {
		if got := percentileIndex(tt.n, tt.q); got != tt.want {
			t.Errorf("percentileIndex(%d, %v) = %d, want %d", tt.n, tt.q, got, tt.want)
		}
	}
}
