package capability

import "time"

const (
	// benchmarkLimit bounds the prime search; the workload is fixed so
	// results stay comparable within a session.
	benchmarkLimit = 10000

	highPerformanceMaxMs   = 50
	mediumPerformanceMaxMs = 150
)

// CountPrimes counts primes in [1, limit) by trial division up to sqrt(n).
func CountPrimes(limit int) int {
	count := 0
	for n := 2; n < limit; n++ {
		prime := true
		for d := 2; d*d <= n; d++ {
			if n%d == 0 {
				prime = false
				break
			}
		}
		if prime {
			count++
		}
	}
	return count
}

// BenchmarkFunc runs the micro-benchmark and returns its wall-clock cost
type BenchmarkFunc func() time.Duration

// RunBenchmark times the fixed prime-counting workload.
func RunBenchmark() time.Duration {
	start := time.Now()
	benchmarkSink = CountPrimes(benchmarkLimit)
	return time.Since(start)
}

// benchmarkSink keeps the compiler from discarding the workload
var benchmarkSink int

// CategorizeBenchmark maps a benchmark duration in milliseconds to a tier.
func CategorizeBenchmark(ms float64) PerformanceCategory {
	switch {
	case ms < highPerformanceMaxMs:
		return PerformanceHigh
	case ms < mediumPerformanceMaxMs:
		return PerformanceMedium
	default:
		return PerformanceLow
	}
}

// NudgeGPUTier refines a mid GPU tier with the benchmark category.
// Low and high tiers are left as classified.
func NudgeGPUTier(tier GPUTier, perf PerformanceCategory) GPUTier {
	if tier != GPUMid {
		return tier
	}
	switch perf {
	case PerformanceLow:
		return GPULow
	case PerformanceHigh:
		return GPUHigh
	default:
		return tier
	}
}
