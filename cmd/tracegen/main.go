// Command tracegen writes a synthetic trace in the format cachesim reads.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/IvanBrykalov/pagecache/cache"
	"github.com/IvanBrykalov/pagecache/workload"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("tracegen failed", "err", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("tracegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		capacity = fs.Int("cap", 100, "cache capacity written into the trace header")
		unique   = fs.Int("unique", 1000, "number of distinct keys")
		n        = fs.Int("n", 10_000, "number of requests")
		dist     = fs.String("dist", "uniform", "key distribution: uniform | zipf")
		zipfS    = fs.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV    = fs.Float64("zipf_v", 1.0, "Zipf v >= 1")
		seed     = fs.Int64("seed", time.Now().UnixNano(), "random seed")
		outPath  = fs.String("o", "", "output file (empty = stdout)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	var t workload.Trace[int]
	switch *dist {
	case "uniform":
		t, err = workload.Uniform(rng, *capacity, *unique, *n)
	case "zipf":
		t, err = workload.Zipf(rng, *capacity, *unique, *n, *zipfS, *zipfV)
	default:
		err = cache.ConfigError("unknown distribution %q (use uniform or zipf)", *dist)
	}
	if err != nil {
		return err
	}

	w := stdout
	if *outPath != "" {
		f, ferr := os.Create(*outPath)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if err := workload.Write(w, t); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}
