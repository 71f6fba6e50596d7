// kvbench measures Insert/Lookup throughput for a kvs store under a
// synthetic random-key workload, across a range of entry counts.
//
// Usage:
//
//	kvbench [flags]
//
// Flags:
//
//	-adapter string    ram or file (default "ram")
//	-path string       backing file path, used when -adapter=file (default "kvbench.store")
//	-counts string     comma-separated entry counts to benchmark (default "1000,10000,100000")
//	-buckets int       bucket table size, 0 picks a prime above 2x each count
//	-slots int         allocator slot-array size (default 4096)
//	-max-hops int      probe sequence bound (default 32)
//	-key-size int      random key size in bytes (default 16)
//	-val-size int      random value size in bytes (default 64)
//	-out string        markdown report output directory (default ".")
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dotcypress/kvs"
	"github.com/dotcypress/kvs/adapter"
)

// Config holds all benchmark configuration.
type Config struct {
	Adapter string
	Path    string
	Counts  []int
	Buckets int
	Slots   int
	MaxHops int
	KeySize int
	ValSize int
	OutDir  string
}

// BenchResult holds one count's put/get timings. Requested and Count
// differ when the bucket table couldn't safely hold the requested count
// (see runBench) and the row was benchmarked at a smaller size instead.
type BenchResult struct {
	Requested  int
	Count      int
	PutElapsed time.Duration
	GetElapsed time.Duration
	Hits       int
}

func main() {
	cfg := Config{}

	flag.StringVar(&cfg.Adapter, "adapter", "ram", "ram or file")
	flag.StringVar(&cfg.Path, "path", "kvbench.store", "backing file path, used when -adapter=file")
	countsStr := flag.String("counts", "1000,10000,100000", "comma-separated entry counts to benchmark")
	flag.IntVar(&cfg.Buckets, "buckets", 0, "bucket table size, 0 picks a prime above 2x each count")
	flag.IntVar(&cfg.Slots, "slots", 4096, "allocator slot-array size")
	flag.IntVar(&cfg.MaxHops, "max-hops", 32, "probe sequence bound")
	flag.IntVar(&cfg.KeySize, "key-size", 16, "random key size in bytes")
	flag.IntVar(&cfg.ValSize, "val-size", 64, "random value size in bytes")
	flag.StringVar(&cfg.OutDir, "out", ".", "markdown report output directory")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "Usage: kvbench [flags]\n\n")
		fmt.Fprint(os.Stderr, "Measures Insert/Lookup throughput across a range of entry counts.\n\n")
		fmt.Fprint(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	for countStr := range strings.SplitSeq(*countsStr, ",") {
		countStr = strings.TrimSpace(countStr)
		if countStr == "" {
			continue
		}

		count, err := strconv.Atoi(countStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid count %q: %v\n", countStr, err)
			os.Exit(1)
		}

		cfg.Counts = append(cfg.Counts, count)
	}

	if len(cfg.Counts) == 0 {
		fmt.Fprint(os.Stderr, "no counts specified\n")
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	results, err := runBench(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchmark failed: %v\n", err)
		os.Exit(1)
	}

	report := formatReport(&cfg, results)
	fmt.Print(report)

	timestamp := time.Now().UTC().Format("20060102-150405")
	outFile := filepath.Join(cfg.OutDir, fmt.Sprintf("kvbench_%s.md", timestamp))
	if err := os.WriteFile(outFile, []byte(report), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		os.Exit(1)
	}
}

// maxLoadFactor bounds how many of a count's requested entries kvbench
// will actually insert into a given bucket table: Buckets is a uint16
// field (65535 ceiling), so a large requested count may simply not fit at
// a load factor that keeps probe sequences short. Rather than let Insert
// spuriously fail with ErrIndexOverflow partway through the run, the
// count is capped up front and the shortfall is reported.
const maxLoadFactor = 0.75

func runBench(cfg *Config) ([]BenchResult, error) {
	var results []BenchResult

	for _, requested := range cfg.Counts {
		buckets := cfg.Buckets
		if buckets == 0 {
			buckets = nextPrimeAbove(requested * 2)
		}

		count := requested
		if maxSafe := int(float64(buckets) * maxLoadFactor); count > maxSafe {
			count = maxSafe
			fmt.Fprintf(os.Stderr, "count=%d exceeds what a %d-bucket table holds at a safe load factor, capping to %d\n",
				requested, buckets, count)
		}

		a, cleanup, err := newBenchAdapter(cfg, buckets, count)
		if err != nil {
			return nil, fmt.Errorf("preparing adapter for count=%d: %w", requested, err)
		}

		store, err := kvs.Create(a, kvs.Options{
			Magic:   0x6b766200, // "kvb\0"
			Buckets: buckets,
			Slots:   cfg.Slots,
			MaxHops: cfg.MaxHops,
		})
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("creating store for count=%d: %w", requested, err)
		}

		res, err := benchOne(store, count, cfg.KeySize, cfg.ValSize)
		store.Close()
		cleanup()
		if err != nil {
			return nil, err
		}
		res.Requested = requested

		results = append(results, res)
	}

	return results, nil
}

// newBenchAdapter returns a fresh adapter of the requested kind, sized
// from count's actual record footprint (not the allocator's slot-array
// capacity, which bounds free-list fragmentation, not total data volume),
// plus the bucket table and 20% headroom for allocator bookkeeping.
func newBenchAdapter(cfg *Config, buckets, count int) (adapter.Adapter, func(), error) {
	recordBytes := uint64(count) * uint64(cfg.KeySize+cfg.ValSize)
	headroom := recordBytes/5 + 4096
	size := uint64(buckets)*8 + 8 + recordBytes + headroom
	if size > uint64(^uint32(0)) {
		size = uint64(^uint32(0))
	}

	if cfg.Adapter == "ram" {
		return adapter.NewRam(int(size)), func() {}, nil
	}

	os.Remove(cfg.Path)
	f, err := adapter.OpenFile(cfg.Path, uint32(size))
	if err != nil {
		return nil, func() {}, err
	}

	return f, func() { os.Remove(cfg.Path) }, nil
}

func benchOne(store *kvs.Store, count, keySize, valSize int) (BenchResult, error) {
	keys := make([][]byte, count)
	vals := make([][]byte, count)

	rng := rand.New(rand.NewSource(1))
	for i := range keys {
		keys[i] = make([]byte, keySize)
		rng.Read(keys[i])
		vals[i] = make([]byte, valSize)
		rng.Read(vals[i])
	}

	putStart := time.Now()
	for i, key := range keys {
		if err := store.Insert(key, vals[i]); err != nil {
			return BenchResult{}, fmt.Errorf("insert %d: %w", i, err)
		}
	}
	putElapsed := time.Since(putStart)

	getStart := time.Now()
	hits := 0
	for _, key := range keys {
		if _, err := store.Lookup(key); err == nil {
			hits++
		}
	}
	getElapsed := time.Since(getStart)

	return BenchResult{
		Count:      count,
		PutElapsed: putElapsed,
		GetElapsed: getElapsed,
		Hits:       hits,
	}, nil
}

func formatReport(cfg *Config, results []BenchResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## kvbench run %s\n\n", time.Now().UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("- adapter: %s\n", cfg.Adapter))
	sb.WriteString(fmt.Sprintf("- slots: %d, max-hops: %d, key-size: %d, val-size: %d\n\n",
		cfg.Slots, cfg.MaxHops, cfg.KeySize, cfg.ValSize))

	sb.WriteString("| count | put ops/sec | get ops/sec | hits |\n")
	sb.WriteString("|---|---|---|---|\n")

	for _, r := range results {
		putRate := float64(r.Count) / r.PutElapsed.Seconds()
		getRate := float64(r.Count) / r.GetElapsed.Seconds()
		label := fmt.Sprintf("%d", r.Count)
		if r.Count != r.Requested {
			label = fmt.Sprintf("%d (capped from %d)", r.Count, r.Requested)
		}
		sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %d |\n", label, putRate, getRate, r.Hits))
	}

	return sb.String()
}

// nextPrimeAbove returns the smallest prime >= n, clamped to the store's
// 16-bit bucket-count ceiling. A prime bucket count reduces systematic
// probe-sequence collisions versus a power of two.
func nextPrimeAbove(n int) int {
	if n < 2 {
		n = 2
	}
	if n > 65535 {
		n = 65535
	}

	for {
		if isPrime(n) {
			return n
		}
		n++
		if n > 65535 {
			return 65535
		}
	}
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}
