// Package repository implements the document store behind the pokedex:
// an in-process go-memdb store and a MongoDB store sharing one interface.
package repository

import (
	"context"

	"github.com/okian/pokedex/internal/domain/model"
)

// Collection names shared by every backend.
const (
	CreatureCollection = "pokemons"
	UserCollection     = "users"
)

// DeleteResult acknowledges a delete-by-name.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// CreatureStore provides document access to creature records keyed by name.
type CreatureStore interface {
	// ListCreatures returns every record. An empty collection yields an empty slice.
	ListCreatures(ctx context.Context) ([]model.Creature, error)

	// FindCreature returns the record whose name matches exactly.
	// Returns ErrNotFound if none matches.
	FindCreature(ctx context.Context, name string) (model.Creature, error)

	// InsertCreature stores c, assigning an ID when empty.
	// Returns ErrDuplicate if the name is taken.
	InsertCreature(ctx context.Context, c model.Creature) (model.Creature, error)

	// UpdateCreature merges patch into the named record and returns the result.
	// Returns ErrNotFound if none matches and ErrDuplicate on a rename collision.
	UpdateCreature(ctx context.Context, name string, patch model.CreaturePatch) (model.Creature, error)

	// DeleteCreature removes the named record. Zero matches is not an error.
	DeleteCreature(ctx context.Context, name string) (DeleteResult, error)

	// CountCreatures returns the number of stored records.
	CountCreatures(ctx context.Context) (int, error)
}

// UserStore provides document access to user accounts keyed by username.
type UserStore interface {
	// InsertUser stores u, assigning an ID when empty.
	// Returns ErrDuplicate if the username is taken.
	InsertUser(ctx context.Context, u model.User) (model.User, error)

	// FindUser returns the account with the given username or ErrNotFound.
	FindUser(ctx context.Context, username string) (model.User, error)

	// CountUsers returns the number of stored accounts.
	CountUsers(ctx context.Context) (int, error)
}

// Store is the full document store used by the service.
type Store interface {
	CreatureStore
	UserStore

	// Close releases the backend. Calls after Close fail with ErrClosed.
	Close(ctx context.Context) error
}
