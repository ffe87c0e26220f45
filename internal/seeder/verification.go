package seeder

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/okian/pokedex/pkg/logger"
)

// verifyPokemons reads back every created pokemon and compares it with what was sent.
func verifyPokemons(ctx context.Context, cfg *Config, log logger.Logger, client *Client, pokemons []Pokemon, created []bool, stats *Stats) {
	log.Info(ctx, "verifying pokemons")
	var verified, mismatch int64

	forEach(ctx, cfg, len(pokemons), func(i int) {
		if !created[i] {
			return
		}
		got, err := client.Get(ctx, pokemons[i].Name)
		if err == nil {
			err = compare(pokemons[i], got)
		}
		if err != nil {
			atomic.AddInt64(&mismatch, 1)
			if cfg.Verbose {
				log.Warn(ctx, "verification failed", logger.String("name", pokemons[i].Name), logger.Error(err))
			}
			return
		}
		atomic.AddInt64(&verified, 1)
	})

	stats.Verified = int(verified)
	stats.Mismatch = int(mismatch)
	log.Info(ctx, "verification completed", logger.Int("verified", stats.Verified), logger.Int("mismatch", stats.Mismatch))
}

func compare(want Pokemon, got stored) error {
	switch {
	case got.ID == "":
		return fmt.Errorf("%w: missing id", ErrNotVerified)
	case got.Name != want.Name:
		return fmt.Errorf("%w: name %q != %q", ErrNotVerified, got.Name, want.Name)
	case got.Type != want.Type:
		return fmt.Errorf("%w: type %q != %q", ErrNotVerified, got.Type, want.Type)
	case got.Level != want.Level:
		return fmt.Errorf("%w: level %d != %d", ErrNotVerified, got.Level, want.Level)
	case !slices.Equal(got.Moves, want.Moves):
		return fmt.Errorf("%w: moves %v != %v", ErrNotVerified, got.Moves, want.Moves)
	}
	return nil
}

// cleanupPokemons deletes every pokemon this run created.
func cleanupPokemons(ctx context.Context, cfg *Config, log logger.Logger, client *Client, pokemons []Pokemon, created []bool, stats *Stats) {
	log.Info(ctx, "cleaning up pokemons")
	var deleted int64

	forEach(ctx, cfg, len(pokemons), func(i int) {
		if !created[i] {
			return
		}
		n, err := client.Delete(ctx, pokemons[i].Name)
		if err != nil {
			if cfg.Verbose {
				log.Warn(ctx, "delete failed", logger.String("name", pokemons[i].Name), logger.Error(err))
			}
			return
		}
		atomic.AddInt64(&deleted, n)
	})

	stats.Deleted = int(deleted)
	log.Info(ctx, "cleanup completed", logger.Int("deleted", stats.Deleted))
}
