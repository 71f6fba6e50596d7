package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/dotcypress/kvs"
)

// REPL is the interactive command loop, wrapping an open [kvs.Store].
type REPL struct {
	store *kvs.Store
	opts  kvs.Options
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kvsh_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("kvsh - kvs store CLI (buckets=%d, slots=%d, max_hops=%d, strategy=%s)\n",
		r.opts.Buckets, r.opts.Slots, r.opts.MaxHops, r.opts.Strategy)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("kvsh> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()
			return nil

		case "help", "?":
			r.printHelp()

		case "put":
			r.cmdPut(args)

		case "get":
			r.cmdGet(args)

		case "del", "delete", "remove":
			r.cmdDelete(args)

		case "erase":
			r.cmdErase(args)

		case "patch":
			r.cmdPatch(args)

		case "append":
			r.cmdAppend(args)

		case "scan", "ls", "list":
			r.cmdScan(args)

		case "prefix":
			r.cmdPrefix(args)

		case "info":
			r.cmdInfo()

		case "clear", "cls":
			fmt.Print("\033[H\033[2J")

		case "bulk":
			r.cmdBulk(args)

		case "seq":
			r.cmdSeq(args)

		case "bench":
			r.cmdBench(args)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"put", "get", "del", "delete", "remove", "erase", "patch", "append",
		"scan", "ls", "list", "prefix", "info", "bulk", "seq", "bench",
		"clear", "cls", "help", "exit", "quit", "q",
	}

	var completions []string
	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}
	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  put <key> <value>            Insert or replace a value")
	fmt.Println("  get <key>                    Retrieve a value")
	fmt.Println("  del <key>                    Delete an entry")
	fmt.Println("  erase <key> [fill]           Delete, overwriting bytes first")
	fmt.Println("  patch <key> <offset> <data>  Overwrite/grow a value at offset")
	fmt.Println("  append <key> <data>          Append bytes to a value")
	fmt.Println("  scan [limit]                 List keys")
	fmt.Println("  prefix <prefix> [limit]      List keys matching prefix")
	fmt.Println("  info                         Show store configuration")
	fmt.Println("  bulk <count> [prefix]        Insert N random entries")
	fmt.Println("  seq <count> [start]          Insert N sequential entries")
	fmt.Println("  bench <count>                Benchmark put+get performance")
	fmt.Println("  help                         Show this help")
	fmt.Println("  exit / quit / q              Exit")
	fmt.Println()
	fmt.Println("Keys and values: hex (e.g., 'deadbeef') or plain text (e.g., 'foo').")
}

// parseBytes tries hex first, falls back to plain text.
func parseBytes(s string) []byte {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return []byte(s)
	}
	return raw
}

func formatBytes(b []byte) string {
	printable := true
	for _, c := range b {
		if c < 32 || c > 126 {
			printable = false
			break
		}
	}
	if printable {
		return fmt.Sprintf("%q", string(b))
	}
	return hex.EncodeToString(b)
}

func (r *REPL) cmdPut(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: put <key> <value>")
		return
	}

	key := parseBytes(args[0])
	val := parseBytes(args[1])

	if err := r.store.Insert(key, val); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("OK: put %s\n", formatBytes(key))
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <key>")
		return
	}

	key := parseBytes(args[0])

	b, err := r.store.Lookup(key)
	if err != nil {
		if errors.Is(err, kvs.ErrKeyNotFound) {
			fmt.Println("(not found)")
			return
		}
		fmt.Printf("Error: %v\n", err)
		return
	}

	buf := make([]byte, b.ValLen)
	if _, _, err := r.store.Load(key, buf, 0); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Value:  %s\n", formatBytes(buf))
	fmt.Printf("Length: %d\n", b.ValLen)
	fmt.Printf("Hash:   0x%04x\n", b.Hash)
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: del <key>")
		return
	}

	key := parseBytes(args[0])
	if err := r.store.Remove(key); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("OK: removed %s\n", formatBytes(key))
}

func (r *REPL) cmdErase(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: erase <key> [fill-byte]")
		return
	}

	key := parseBytes(args[0])

	var fill byte
	if len(args) >= 2 {
		v, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			fmt.Printf("Error parsing fill byte: %v\n", err)
			return
		}
		fill = byte(v)
	}

	if err := r.store.Erase(key, fill); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("OK: erased %s\n", formatBytes(key))
}

func (r *REPL) cmdPatch(args []string) {
	if len(args) < 3 {
		fmt.Println("Usage: patch <key> <offset> <data>")
		return
	}

	key := parseBytes(args[0])

	offset, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("Error parsing offset: %v\n", err)
		return
	}

	data := parseBytes(args[2])

	if err := r.store.Patch(key, offset, data); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("OK: patched %s at offset %d\n", formatBytes(key), offset)
}

func (r *REPL) cmdAppend(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: append <key> <data>")
		return
	}

	key := parseBytes(args[0])
	data := parseBytes(args[1])

	if err := r.store.Append(key, data); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("OK: appended to %s\n", formatBytes(key))
}

func (r *REPL) cmdScan(args []string) {
	limit := 20
	if len(args) >= 1 {
		var err error
		limit, err = strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error parsing limit: %v\n", err)
			return
		}
	}

	count := 0
	for kr := range r.store.Keys() {
		if count >= limit {
			fmt.Printf("... (showing first %d, use 'scan <limit>' for more)\n", limit)
			return
		}
		count++
		fmt.Printf("%3d. %s  len=%d\n", count, formatBytes(kr.Key), kr.ValLen)
	}

	if count == 0 {
		fmt.Println("(empty)")
	}
}

func (r *REPL) cmdPrefix(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: prefix <prefix> [limit]")
		return
	}

	prefix := parseBytes(args[0])

	limit := 20
	if len(args) >= 2 {
		var err error
		limit, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error parsing limit: %v\n", err)
			return
		}
	}

	count := 0
	for kr := range r.store.KeysWithPrefix(prefix) {
		if count >= limit {
			fmt.Printf("... (showing first %d)\n", limit)
			return
		}
		count++
		fmt.Printf("%3d. %s  len=%d\n", count, formatBytes(kr.Key), kr.ValLen)
	}

	if count == 0 {
		fmt.Println("(no matches)")
	}
}

func (r *REPL) cmdInfo() {
	fmt.Printf("Store Info:\n")
	fmt.Printf("  Magic:         0x%08x\n", r.opts.Magic)
	fmt.Printf("  Nonce:         %d\n", r.opts.Nonce)
	fmt.Printf("  Buckets:       %d\n", r.opts.Buckets)
	fmt.Printf("  Slots:         %d\n", r.opts.Slots)
	fmt.Printf("  Max hops:      %d\n", r.opts.MaxHops)
	fmt.Printf("  Strategy:      %s\n", r.opts.Strategy)
	fmt.Printf("  Max key len:   %d\n", r.opts.MaxKeyLen)
	fmt.Printf("  Max value len: %d\n", r.opts.MaxValueLen)
	fmt.Printf("  Read-only:     %v\n", r.opts.Slots == 0)

	if r.opts.Slots == 0 {
		return
	}

	ranges, err := r.store.FreeRanges()
	if err != nil {
		fmt.Printf("  Free ranges:   (error: %v)\n", err)
		return
	}

	fmt.Printf("  Free ranges:   %d\n", len(ranges))
	for _, rg := range ranges {
		fmt.Printf("    [%d, %d) -- %d bytes\n", rg[0], rg[1], rg[1]-rg[0])
	}
}

func (r *REPL) cmdBulk(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bulk <count> [prefix]")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Println("Error: count must be a positive integer")
		return
	}

	var prefix []byte
	if len(args) >= 2 {
		prefix = parseBytes(args[1])
	}

	start := time.Now()

	for i := 0; i < count; i++ {
		key := make([]byte, len(prefix)+8)
		copy(key, prefix)
		rand.Read(key[len(prefix):])

		val := make([]byte, 16)
		rand.Read(val)

		if err := r.store.Insert(key, val); err != nil {
			fmt.Printf("Error at entry %d: %v\n", i+1, err)
			return
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("OK: inserted %d entries in %v (%.0f ops/sec)\n",
		count, elapsed.Round(time.Millisecond), float64(count)/elapsed.Seconds())
}

func (r *REPL) cmdSeq(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: seq <count> [start]")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Println("Error: count must be a positive integer")
		return
	}

	startNum := 1
	if len(args) >= 2 {
		startNum, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error parsing start: %v\n", err)
			return
		}
	}

	start := time.Now()

	for i := 0; i < count; i++ {
		key := []byte(fmt.Sprintf("seq-%012d", startNum+i))
		val := []byte(fmt.Sprintf("value-%d", startNum+i))

		if err := r.store.Insert(key, val); err != nil {
			fmt.Printf("Error at entry %d: %v\n", i+1, err)
			return
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("OK: inserted %d sequential entries in %v (%.0f ops/sec)\n",
		count, elapsed.Round(time.Millisecond), float64(count)/elapsed.Seconds())
}

func (r *REPL) cmdBench(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bench <count>")
		return
	}

	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		fmt.Println("Error: count must be a positive integer")
		return
	}

	keys := make([][]byte, count)
	vals := make([][]byte, count)
	for i := 0; i < count; i++ {
		keys[i] = make([]byte, 8)
		rand.Read(keys[i])
		vals[i] = make([]byte, 16)
		rand.Read(vals[i])
	}

	fmt.Printf("Benchmarking %d operations...\n", count)

	putStart := time.Now()
	for i, key := range keys {
		if err := r.store.Insert(key, vals[i]); err != nil {
			fmt.Printf("Error at put %d: %v\n", i+1, err)
			return
		}
	}
	putElapsed := time.Since(putStart)

	getStart := time.Now()
	hits := 0
	for _, key := range keys {
		if _, err := r.store.Lookup(key); err == nil {
			hits++
		}
	}
	getElapsed := time.Since(getStart)

	fmt.Printf("\nResults:\n")
	fmt.Printf("  Puts: %d ops in %v (%.0f ops/sec)\n",
		count, putElapsed.Round(time.Millisecond), float64(count)/putElapsed.Seconds())
	fmt.Printf("  Gets: %d ops in %v (%.0f ops/sec), %d hits\n",
		count, getElapsed.Round(time.Millisecond), float64(count)/getElapsed.Seconds(), hits)
}
