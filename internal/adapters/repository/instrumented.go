package repository

import (
	"context"
	"time"

	"github.com/okian/pokedex/internal/domain/model"
	"github.com/okian/pokedex/pkg/metrics"
)

// Instrumented decorates a Store with per-operation Prometheus metrics.
type Instrumented struct {
	next Store
}

// Instrument wraps s so every call is counted and timed.
func Instrument(s Store) *Instrumented {
	return &Instrumented{next: s}
}

func observe(op string, start time.Time, err error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	outcome := Outcome(err)
	metrics.RecordRepositoryOperation(op, outcome, ms)
	if outcome == "error" {
		metrics.RecordErrorLatency("repository", op, ms)
	}
}

func (i *Instrumented) ListCreatures(ctx context.Context) (out []model.Creature, err error) {
	defer func(start time.Time) { observe("list_creatures", start, err) }(time.Now())
	return i.next.ListCreatures(ctx)
}

func (i *Instrumented) FindCreature(ctx context.Context, name string) (c model.Creature, err error) {
	defer func(start time.Time) { observe("find_creature", start, err) }(time.Now())
	return i.next.FindCreature(ctx, name)
}

func (i *Instrumented) InsertCreature(ctx context.Context, in model.Creature) (c model.Creature, err error) {
	defer func(start time.Time) { observe("insert_creature", start, err) }(time.Now())
	return i.next.InsertCreature(ctx, in)
}

func (i *Instrumented) UpdateCreature(ctx context.Context, name string, patch model.CreaturePatch) (c model.Creature, err error) {
	defer func(start time.Time) { observe("update_creature", start, err) }(time.Now())
	return i.next.UpdateCreature(ctx, name, patch)
}

func (i *Instrumented) DeleteCreature(ctx context.Context, name string) (res DeleteResult, err error) {
	defer func(start time.Time) { observe("delete_creature", start, err) }(time.Now())
	return i.next.DeleteCreature(ctx, name)
}

func (i *Instrumented) CountCreatures(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { observe("count_creatures", start, err) }(time.Now())
	n, err = i.next.CountCreatures(ctx)
	if err == nil {
		metrics.UpdateCreatureCount(n)
	}
	return n, err
}

func (i *Instrumented) InsertUser(ctx context.Context, in model.User) (u model.User, err error) {
	defer func(start time.Time) { observe("insert_user", start, err) }(time.Now())
	return i.next.InsertUser(ctx, in)
}

func (i *Instrumented) FindUser(ctx context.Context, username string) (u model.User, err error) {
	defer func(start time.Time) { observe("find_user", start, err) }(time.Now())
	return i.next.FindUser(ctx, username)
}

func (i *Instrumented) CountUsers(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { observe("count_users", start, err) }(time.Now())
	n, err = i.next.CountUsers(ctx)
	if err == nil {
		metrics.UpdateUserCount(n)
	}
	return n, err
}

// Close closes the wrapped store.
func (i *Instrumented) Close(ctx context.Context) error {
	return i.next.Close(ctx)
}
