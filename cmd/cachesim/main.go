// Command cachesim replays a trace read from stdin through a cache engine and
// prints the number of hits.
//
// Input format: <cache size> <n> <key_1> ... <key_n>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/pagecache/cache"
	pmet "github.com/IvanBrykalov/pagecache/metrics/prom"
	"github.com/IvanBrykalov/pagecache/policy"
	"github.com/IvanBrykalov/pagecache/workload"
)

// typeAll runs every engine on the same trace.
const typeAll = "all"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		var logged loggedError
		if !errors.As(err, &logged) && !errors.Is(err, flag.ErrHelp) {
			slog.Error("cachesim failed", "err", err)
		}
		stop()
		os.Exit(1)
	}
}

// loggedError marks an error already reported through the configured logger.
type loggedError struct{ error }

func (e loggedError) Unwrap() error { return e.error }

// options holds the parsed command line.
type options struct {
	typ         string
	hot         float64
	stackMul    int
	metricsAddr string
	linger      time.Duration
}

// run parses args and replays the trace on stdin. Errors raised after the
// logger is configured are logged through it and returned as loggedError.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cachesim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		typ      = fs.String("type", "", "cache engine: lirs | belady | all (required)")
		hot      = fs.Float64("hot", 0, "LIRS hot fraction in (0,1] (0 = default 0.9)")
		stackMul = fs.Int("stack", 0, "LIRS stack limit as a multiple of capacity (0 = default 2)")

		metricsAddr = fs.String("metrics", "", "serve Prometheus metrics at addr (e.g. :8080); empty = disabled")
		linger      = fs.Duration("linger", 0, "keep serving metrics this long after the run")
		logLevel    = fs.String("log-level", "", "debug | info | warn | error (default $"+logLevelEnv+" or info)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := newLogger(stderr, *logLevel)
	if err != nil {
		return err
	}
	opt := options{
		typ:         *typ,
		hot:         *hot,
		stackMul:    *stackMul,
		metricsAddr: *metricsAddr,
		linger:      *linger,
	}
	if err := simulate(ctx, log, opt, stdin, stdout); err != nil {
		log.Error("cachesim failed", "err", err)
		return loggedError{err}
	}
	return nil
}

func simulate(ctx context.Context, log *slog.Logger, opt options, stdin io.Reader, stdout io.Writer) error {
	kinds, err := parseType(opt.typ)
	if err != nil {
		return err
	}

	trace, err := workload.Read(stdin)
	if err != nil {
		return fmt.Errorf("read trace: %w", err)
	}
	log.Debug("trace loaded", "capacity", trace.Capacity, "requests", len(trace.Requests), "unique", trace.Unique())

	// ---- Prometheus metrics (own registry, one label set per engine) ----
	reg := prometheus.NewRegistry()
	cfgs := make(map[policy.Kind]policy.Config[int, float64], len(kinds))
	for _, kind := range kinds {
		cfg := policy.Config[int, float64]{
			HotFraction:     opt.hot,
			StackMultiplier: opt.stackMul,
		}
		cfg.Logger = log.With("engine", string(kind))
		if opt.metricsAddr != "" {
			cfg.Metrics = pmet.New(reg, "pagecache", "sim", prometheus.Labels{"engine": string(kind)})
		}
		cfgs[kind] = cfg
	}
	if opt.metricsAddr != "" {
		shutdown, err := serveMetrics(opt.metricsAddr, reg, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	start := time.Now()
	hits, err := workload.Compare(ctx, trace, cfgs)
	if err != nil {
		return err
	}
	log.Debug("replay done", "elapsed", time.Since(start))

	if opt.typ == typeAll {
		for _, kind := range kinds {
			fmt.Fprintf(stdout, "%s %d\n", kind, hits[kind])
		}
	} else {
		fmt.Fprintln(stdout, hits[kinds[0]])
	}

	if opt.metricsAddr != "" && opt.linger > 0 {
		log.Info("lingering for metrics scrape", "for", opt.linger)
		select {
		case <-time.After(opt.linger):
		case <-ctx.Done():
		}
	}
	return nil
}

func parseType(typ string) ([]policy.Kind, error) {
	switch typ {
	case "":
		return nil, cache.ConfigError("-type is required (lirs, belady or %s)", typeAll)
	case typeAll:
		return policy.Kinds(), nil
	}
	kind, err := policy.ParseKind(typ)
	if err != nil {
		return nil, err
	}
	return []policy.Kind{kind}, nil
}

// serveMetrics exposes reg on addr/metrics and returns a shutdown func.
func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics: serving", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
