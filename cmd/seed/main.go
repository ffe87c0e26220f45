package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/pokedex/internal/seeder"
	"github.com/okian/pokedex/pkg/logger"
)

// Default configuration constants.
const (
	defaultCount   = 100
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
	defaultTimeout = 10 * time.Second
	defaultRunTime = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:3000", "Base URL of the service")
		count      = flag.Int("count", defaultCount, "Number of pokemons to create")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		prefix     = flag.String("prefix", "seed", "Name prefix for generated pokemons")
		cleanup    = flag.Bool("cleanup", false, "Delete the generated pokemons after verifying them")
		outputFile = flag.String("output", "", "Write the generated pokemons to this JSON file")
		verbose    = flag.Bool("verbose", false, "Log every failed request")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeder.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTime)
	defer cancel()

	cfg := &seeder.Config{
		BaseURL:    *baseURL,
		Count:      *count,
		Workers:    *workers,
		Timeout:    *timeout,
		Prefix:     *prefix,
		Cleanup:    *cleanup,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}

	if _, err := seeder.Run(ctx, cfg, logger.Named("seed")); err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
}
