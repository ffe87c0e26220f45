package seeder

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

var types = []string{
	"Normal", "Fire", "Water", "Electric", "Grass", "Ice", "Fighting", "Poison", "Ground",
	"Flying", "Psychic", "Bug", "Rock", "Ghost", "Dragon", "Dark", "Steel", "Fairy",
}

var moves = []string{
	"Tackle", "Growl", "Ember", "Water Gun", "Thunderbolt", "Quick Attack", "Vine Whip",
	"Ice Beam", "Karate Chop", "Poison Sting", "Earthquake", "Gust", "Confusion",
	"String Shot", "Rock Throw", "Lick", "Dragon Rage", "Bite", "Iron Tail", "Moonblast",
}

const (
	maxLevel    = 100
	maxMovesPer = 4
)

// randomInt returns a uniform value in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generatePokemons builds count pokemons with unique names.
func generatePokemons(ctx context.Context, cfg *Config) ([]Pokemon, error) {
	out := make([]Pokemon, cfg.Count)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		out[i] = generatePokemon(cfg.Prefix)
	}
	return out, nil
}

func generatePokemon(prefix string) Pokemon {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	name := id
	if prefix != "" {
		name = prefix + "-" + id
	}

	n := 1 + randomInt(maxMovesPer)
	picked := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(picked) < n {
		m := moves[randomInt(len(moves))]
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		picked = append(picked, m)
	}

	return Pokemon{
		Name:  name,
		Type:  types[randomInt(len(types))],
		Level: 1 + randomInt(maxLevel),
		Moves: picked,
	}
}
