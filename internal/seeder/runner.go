package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/pokedex/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrIncomplete reports a run where some pokemons were not created and verified.
var ErrIncomplete = errors.New("seeding incomplete")

// Run executes a complete seeding run.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", cfg.Count)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting pokedex seeder",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("cleanup", cfg.Cleanup))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	pokemons, err := generatePokemons(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	stats.Generated = len(pokemons)

	created := submitPokemons(ctx, cfg, log, client, pokemons, stats)
	verifyPokemons(ctx, cfg, log, client, pokemons, created, stats)

	if cfg.OutputFile != "" {
		if err := savePokemons(cfg.OutputFile, pokemons); err != nil {
			log.Warn(ctx, "failed to save pokemons to file", logger.Error(err))
		} else {
			log.Info(ctx, "pokemons saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	if cfg.Cleanup {
		cleanupPokemons(ctx, cfg, log, client, pokemons, created, stats)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Verified != stats.Generated {
		return stats, fmt.Errorf("%w: %d of %d verified", ErrIncomplete, stats.Verified, stats.Generated)
	}
	return stats, nil
}

// savePokemons writes the generated pokemons as a JSON array.
func savePokemons(filename string, pokemons []Pokemon) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(pokemons, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pokemons: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, perSecond float64
	if stats.Generated > 0 {
		successRate = float64(stats.Verified) / float64(stats.Generated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Created) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("created", stats.Created),
		logger.Int("conflicts", stats.Conflicts),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatch", stats.Mismatch),
		logger.Int("deleted", stats.Deleted),
		logger.Duration("duration", stats.Duration),
		logger.Any("successRate", successRate),
		logger.Any("createdPerSecond", perSecond))
}
