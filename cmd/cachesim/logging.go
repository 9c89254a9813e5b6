package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// logLevelEnv overrides the default level when -log-level is not given.
const logLevelEnv = "PAGECACHE_LOG_LEVEL"

// newLogger builds a text logger writing to w. The level comes from flagLevel,
// then from $PAGECACHE_LOG_LEVEL, and defaults to Info.
func newLogger(w io.Writer, flagLevel string) (*slog.Logger, error) {
	name := flagLevel
	if name == "" {
		name = os.Getenv(logLevelEnv)
	}
	var lvl slog.Level
	if name != "" {
		if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
			return nil, fmt.Errorf("log level %q: %w", name, err)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
