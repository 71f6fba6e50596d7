// kvsh is an interactive CLI for creating, inspecting and poking at kvs
// store files.
//
// Usage:
//
//	kvsh <store-file>              Open an existing store
//	kvsh new [opts] <store-file>   Create a new store
//
// Options for 'new':
//
//	-b, --buckets      Bucket table size (default: 1021)
//	-s, --slots        Allocator slot-array size (default: 256)
//	    --max-hops     Probe sequence bound (default: 32)
//	    --strategy     maxfit | minfit | firstfit (default: maxfit)
//	    --magic        Magic value, hex or decimal (default: 0x6b767331, "kvs1")
//	    --nonce        Hash nonce (default: 1)
//	    --config       Explicit config file (JSONC)
//
// Commands (in REPL):
//
//	put <key> <value>            Insert or replace a value
//	get <key>                    Retrieve a value
//	del <key>                    Delete an entry
//	erase <key> [fill]           Delete, overwriting the record bytes first
//	patch <key> <offset> <data>  Overwrite/grow a value at offset
//	append <key> <data>          Append bytes to a value
//	scan [limit]                 List keys
//	prefix <prefix> [limit]      List keys matching prefix
//	info                         Show store configuration
//	bulk <count> [prefix]        Insert N random entries
//	seq <count> [start]          Insert N sequential entries
//	bench <count>                Benchmark put+get performance
//	help                         Show this help
//	exit / quit / q              Exit
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dotcypress/kvs"
	"github.com/dotcypress/kvs/adapter"
)

const defaultMagic uint32 = 0x6b767331 // "kvs1"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("missing command or store file path")
	}

	if os.Args[1] == "new" {
		return runNew(os.Args[2:])
	}

	return runOpen(os.Args[1:])
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  kvsh <store-file>              Open an existing store")
	fmt.Fprintln(os.Stderr, "  kvsh new [opts] <store-file>   Create a new store")
	fmt.Fprintln(os.Stderr, "\nRun 'kvsh new --help' for options when creating a new store.")
}

func runNew(args []string) error {
	fs := pflag.NewFlagSet("new", pflag.ExitOnError)

	buckets := fs.IntP("buckets", "b", 0, "bucket table size")
	slots := fs.IntP("slots", "s", 0, "allocator slot-array size")
	maxHops := fs.Int("max-hops", 0, "probe sequence bound")
	strategy := fs.String("strategy", "", "maxfit | minfit | firstfit")
	magicStr := fs.String("magic", "", "magic value, hex (0x...) or decimal")
	nonce := fs.Uint16("nonce", 1, "hash nonce")
	maxKeyLen := fs.Int("max-key-len", 0, "max accepted key length")
	maxValueLen := fs.Int("max-value-len", 0, "max accepted value length")
	configPath := fs.String("config", "", "explicit config file (JSONC)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kvsh new [options] <store-file>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("missing store file path")
	}
	storePath := fs.Arg(0)

	if _, err := os.Stat(storePath); err == nil {
		return fmt.Errorf("store file already exists: %s (use 'kvsh %s' to open it)", storePath, storePath)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	cfg, err := LoadConfig(workDir, *configPath, os.Environ())
	if err != nil {
		return err
	}

	if *buckets != 0 {
		cfg.Buckets = *buckets
	}
	if *slots != 0 {
		cfg.Slots = *slots
	}
	if *maxHops != 0 {
		cfg.MaxHops = *maxHops
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
	}
	if *maxKeyLen != 0 {
		cfg.MaxKeyLen = *maxKeyLen
	}
	if *maxValueLen != 0 {
		cfg.MaxValueLen = *maxValueLen
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}

	allocStrategy, err := parseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}

	magic := defaultMagic
	if *magicStr != "" {
		magic, err = parseMagic(*magicStr)
		if err != nil {
			return err
		}
	}

	opts := kvs.Options{
		Magic:       magic,
		Nonce:       *nonce,
		Buckets:     cfg.Buckets,
		Slots:       cfg.Slots,
		MaxHops:     cfg.MaxHops,
		MaxKeyLen:   cfg.MaxKeyLen,
		MaxValueLen: cfg.MaxValueLen,
		Strategy:    allocStrategy,
	}

	size := estimateFileSize(opts)

	a, err := adapter.OpenFile(storePath, size)
	if err != nil {
		return fmt.Errorf("opening backing file: %w", err)
	}

	fmt.Printf("\nCreating store with:\n")
	fmt.Printf("  Path:          %s\n", storePath)
	fmt.Printf("  Buckets:       %d\n", opts.Buckets)
	fmt.Printf("  Slots:         %d\n", opts.Slots)
	fmt.Printf("  Max hops:      %d\n", opts.MaxHops)
	fmt.Printf("  Strategy:      %s\n", allocStrategy)
	fmt.Printf("  Max key len:   %d\n", opts.MaxKeyLen)
	fmt.Printf("  Max value len: %d\n", opts.MaxValueLen)
	fmt.Println()

	store, err := kvs.Create(a, opts)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()

	repl := &REPL{store: store, opts: opts}
	return repl.Run()
}

func runOpen(args []string) error {
	fs := pflag.NewFlagSet("open", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kvsh <store-file>")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("missing store file path")
	}
	storePath := fs.Arg(0)

	info, err := os.Stat(storePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("store file does not exist: %s (use 'kvsh new %s' to create it)", storePath, storePath)
	}
	if err != nil {
		return fmt.Errorf("stat store file: %w", err)
	}

	a, err := adapter.OpenFile(storePath, uint32(info.Size()))
	if err != nil {
		return fmt.Errorf("opening backing file: %w", err)
	}

	opts, err := probeHeaderOptions(a)
	if err != nil {
		return fmt.Errorf("reading store header: %w", err)
	}

	store, err := kvs.Open(a, opts)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	repl := &REPL{store: store, opts: opts}
	return repl.Run()
}

func parseMagic(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid magic %q: %w", s, err)
	}
	return uint32(v), nil
}

// probeHeaderOptions reads the store's 8-byte header directly (magic,
// nonce, buckets are the only fields the on-medium format persists, §6.2)
// and folds the remaining knobs in from .kvsh.json / the global config,
// since Slots/MaxHops/MaxKeyLen/MaxValueLen aren't recoverable from the
// medium itself.
func probeHeaderOptions(a *adapter.File) (kvs.Options, error) {
	const headerSize = 8
	buf := make([]byte, headerSize)
	if err := a.Read(0, buf); err != nil {
		return kvs.Options{}, err
	}

	magic := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	nonce := uint16(buf[4])<<8 | uint16(buf[5])
	buckets := uint16(buf[6])<<8 | uint16(buf[7])

	workDir, err := os.Getwd()
	if err != nil {
		return kvs.Options{}, fmt.Errorf("resolving working directory: %w", err)
	}

	cfg, err := LoadConfig(workDir, "", os.Environ())
	if err != nil {
		return kvs.Options{}, err
	}

	strategy, err := parseStrategy(cfg.Strategy)
	if err != nil {
		return kvs.Options{}, err
	}

	return kvs.Options{
		Magic:       magic,
		Nonce:       nonce,
		Buckets:     int(buckets),
		Slots:       cfg.Slots,
		MaxHops:     cfg.MaxHops,
		MaxKeyLen:   cfg.MaxKeyLen,
		MaxValueLen: cfg.MaxValueLen,
		Strategy:    strategy,
	}, nil
}

// estimateFileSize sizes the backing file generously: 4096 bytes for the
// header and slack, the bucket table, and room for
// Slots*(MaxKeyLen+MaxValueLen) worth of record bytes. The result is the
// adapter.File's fixed address space: its Write rejects any range past it.
func estimateFileSize(opts kvs.Options) uint32 {
	const headerAndSlack = 4096
	records := uint32(opts.Slots) * uint32(opts.MaxKeyLen+opts.MaxValueLen)
	return headerAndSlack + uint32(opts.Buckets)*8 + records
}
