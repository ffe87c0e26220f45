package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/okian/pokedex/internal/domain/model"
)

const idIndex = "id"

// memSchema keys creatures by name and users by username; memdb enforces
// uniqueness only on the id index, which is why natural keys live there.
func memSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			CreatureCollection: {
				Name: CreatureCollection,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
			UserCollection: {
				Name: UserCollection,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Username"},
					},
				},
			},
		},
	}
}

// MemoryStore is an in-process document store backed by go-memdb.
// Stored objects are never mutated; every write inserts a fresh copy.
type MemoryStore struct {
	db     *memdb.MemDB
	closed atomic.Bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memSchema())
	if err != nil {
		return nil, WrapKind("memory.open", ErrDataAccess, err)
	}
	return &MemoryStore{db: db}, nil
}

func (s *MemoryStore) check(ctx context.Context, op string) error {
	if s.closed.Load() {
		return WrapKind(op, ErrDataAccess, ErrClosed)
	}
	return WrapKind(op, ErrDataAccess, ctx.Err())
}

// ListCreatures returns all creatures ordered by name.
func (s *MemoryStore) ListCreatures(ctx context.Context) ([]model.Creature, error) {
	const op = "memory.list_creatures"
	if err := s.check(ctx, op); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(CreatureCollection, idIndex)
	if err != nil {
		return nil, WrapKind(op, ErrDataAccess, err)
	}
	out := []model.Creature{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		c, ok := raw.(*model.Creature)
		if !ok {
			return nil, WrapKind(op, ErrDataAccess, fmt.Errorf("unexpected object %T", raw))
		}
		out = append(out, cloneCreature(*c))
	}
	return out, nil
}

// FindCreature returns the creature named name.
func (s *MemoryStore) FindCreature(ctx context.Context, name string) (model.Creature, error) {
	const op = "memory.find_creature"
	if err := s.check(ctx, op); err != nil {
		return model.Creature{}, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	c, err := firstCreature(txn, op, name)
	if err != nil {
		return model.Creature{}, err
	}
	return cloneCreature(*c), nil
}

// InsertCreature stores a new creature.
func (s *MemoryStore) InsertCreature(ctx context.Context, c model.Creature) (model.Creature, error) {
	const op = "memory.insert_creature"
	if err := s.check(ctx, op); err != nil {
		return model.Creature{}, err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(CreatureCollection, idIndex, c.Name)
	if err != nil {
		return model.Creature{}, WrapKind(op, ErrDataAccess, err)
	}
	if existing != nil {
		return model.Creature{}, WrapKind(op, ErrDuplicate, fmt.Errorf("name %q", c.Name))
	}

	stored := cloneCreature(c)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Moves == nil {
		stored.Moves = []string{}
	}
	if err := txn.Insert(CreatureCollection, &stored); err != nil {
		return model.Creature{}, WrapKind(op, ErrDataAccess, err)
	}
	txn.Commit()
	return cloneCreature(stored), nil
}

// UpdateCreature merges patch into the creature named name.
func (s *MemoryStore) UpdateCreature(ctx context.Context, name string, patch model.CreaturePatch) (model.Creature, error) {
	const op = "memory.update_creature"
	if err := s.check(ctx, op); err != nil {
		return model.Creature{}, err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	current, err := firstCreature(txn, op, name)
	if err != nil {
		return model.Creature{}, err
	}
	updated := patch.Apply(cloneCreature(*current))

	if updated.Name != current.Name {
		clash, err := txn.First(CreatureCollection, idIndex, updated.Name)
		if err != nil {
			return model.Creature{}, WrapKind(op, ErrDataAccess, err)
		}
		if clash != nil {
			return model.Creature{}, WrapKind(op, ErrDuplicate, fmt.Errorf("name %q", updated.Name))
		}
		if err := txn.Delete(CreatureCollection, current); err != nil {
			return model.Creature{}, WrapKind(op, ErrDataAccess, err)
		}
	}
	if err := txn.Insert(CreatureCollection, &updated); err != nil {
		return model.Creature{}, WrapKind(op, ErrDataAccess, err)
	}
	txn.Commit()
	return cloneCreature(updated), nil
}

// DeleteCreature removes the creature named name, if any.
func (s *MemoryStore) DeleteCreature(ctx context.Context, name string) (DeleteResult, error) {
	const op = "memory.delete_creature"
	if err := s.check(ctx, op); err != nil {
		return DeleteResult{}, err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	n, err := txn.DeleteAll(CreatureCollection, idIndex, name)
	if err != nil {
		return DeleteResult{}, WrapKind(op, ErrDataAccess, err)
	}
	txn.Commit()
	return DeleteResult{DeletedCount: int64(n)}, nil
}

// CountCreatures returns the number of creatures.
func (s *MemoryStore) CountCreatures(ctx context.Context) (int, error) {
	return s.count(ctx, "memory.count_creatures", CreatureCollection)
}

// InsertUser stores a new account.
func (s *MemoryStore) InsertUser(ctx context.Context, u model.User) (model.User, error) {
	const op = "memory.insert_user"
	if err := s.check(ctx, op); err != nil {
		return model.User{}, err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(UserCollection, idIndex, u.Username)
	if err != nil {
		return model.User{}, WrapKind(op, ErrDataAccess, err)
	}
	if existing != nil {
		return model.User{}, WrapKind(op, ErrDuplicate, fmt.Errorf("username %q", u.Username))
	}

	stored := cloneUser(u)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if err := txn.Insert(UserCollection, &stored); err != nil {
		return model.User{}, WrapKind(op, ErrDataAccess, err)
	}
	txn.Commit()
	return cloneUser(stored), nil
}

// FindUser returns the account named username.
func (s *MemoryStore) FindUser(ctx context.Context, username string) (model.User, error) {
	const op = "memory.find_user"
	if err := s.check(ctx, op); err != nil {
		return model.User{}, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(UserCollection, idIndex, username)
	if err != nil {
		return model.User{}, WrapKind(op, ErrDataAccess, err)
	}
	if raw == nil {
		return model.User{}, NewKind(op, ErrNotFound)
	}
	u, ok := raw.(*model.User)
	if !ok {
		return model.User{}, WrapKind(op, ErrDataAccess, fmt.Errorf("unexpected object %T", raw))
	}
	return cloneUser(*u), nil
}

// CountUsers returns the number of accounts.
func (s *MemoryStore) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, "memory.count_users", UserCollection)
}

// Close marks the store closed. Data is dropped with the process.
func (s *MemoryStore) Close(_ context.Context) error {
	s.closed.Store(true)
	return nil
}

func (s *MemoryStore) count(ctx context.Context, op, table string) (int, error) {
	if err := s.check(ctx, op); err != nil {
		return 0, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(table, idIndex)
	if err != nil {
		return 0, WrapKind(op, ErrDataAccess, err)
	}
	n := 0
	for raw := it.Next(); raw != nil; raw = it.Next() {
		n++
	}
	return n, nil
}

func firstCreature(txn *memdb.Txn, op, name string) (*model.Creature, error) {
	raw, err := txn.First(CreatureCollection, idIndex, name)
	if err != nil {
		return nil, WrapKind(op, ErrDataAccess, err)
	}
	if raw == nil {
		return nil, NewKind(op, ErrNotFound)
	}
	c, ok := raw.(*model.Creature)
	if !ok {
		return nil, WrapKind(op, ErrDataAccess, fmt.Errorf("unexpected object %T", raw))
	}
	return c, nil
}

func cloneCreature(c model.Creature) model.Creature {
	if c.Moves != nil {
		c.Moves = append([]string{}, c.Moves...)
	}
	return c
}

func cloneUser(u model.User) model.User {
	if u.FavoritePokemon != nil {
		u.FavoritePokemon = append([]string{}, u.FavoritePokemon...)
	}
	return u
}
