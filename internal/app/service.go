// Package service provides the data-access operations behind both the JSON
// API and the HTML views.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pokedex/internal/adapters/repository"
	"github.com/okian/pokedex/internal/config"
	"github.com/okian/pokedex/internal/domain/model"
	"github.com/okian/pokedex/internal/domain/password"
	"github.com/okian/pokedex/pkg/logger"
	"github.com/okian/pokedex/pkg/metrics"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Service implements the creature and user operations on top of a Store.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	hasher password.Hasher

	// ownStore is set when Start opened the store, so Stop may discard it.
	ownStore bool

	// Configuration
	driver       string
	mongoURI     string
	mongoDB      string
	mongoTimeout time.Duration
	bcryptCost   int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects an already opened store. Start will not open another.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithHasher overrides the password hasher.
func WithHasher(h password.Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithBcryptCost sets the bcrypt work factor used at signup.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}

// WithStoreDriver selects the backend Start opens: "memory" or "mongo".
func WithStoreDriver(driver string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
		}
	}
}

// WithMongo configures the MongoDB deployment used by the mongo driver.
func WithMongo(uri, database string, timeout time.Duration) Option {
	return func(s *Service) {
		s.mongoURI = uri
		s.mongoDB = database
		if timeout > 0 {
			s.mongoTimeout = timeout
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:       config.StoreMemory,
		mongoTimeout: 5 * time.Second,
		bcryptCost:   password.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the configured store (unless one was injected) and readies the hasher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.hasher == nil {
		s.hasher = password.NewBcryptHasher(s.bcryptCost)
	}

	if s.store == nil {
		raw, err := s.open(ctx)
		if err != nil {
			return err
		}
		s.store = repository.Instrument(raw)
		s.ownStore = true
	}

	s.started = true
	s.logger.Info(ctx, "pokedex service started", logger.String("store", s.driver))
	return nil
}

func (s *Service) open(ctx context.Context) (repository.Store, error) {
	switch s.driver {
	case config.StoreMemory:
		return repository.NewMemoryStore()
	case config.StoreMongo:
		s.logger.Info(ctx, "connecting to mongodb", logger.String("database", s.mongoDB))
		return repository.NewMongoStore(ctx, s.mongoURI, s.mongoDB,
			repository.WithConnectTimeout(s.mongoTimeout),
			repository.WithOperationTimeout(s.mongoTimeout),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, s.driver)
	}
}

// Stop closes the store. A store opened by Start is dropped, so a later
// Start opens a fresh one; an injected store stays closed.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	store := s.store
	if s.ownStore {
		s.store, s.ownStore = nil, false
	}
	if err := store.Close(ctx); err != nil {
		s.logger.Error(ctx, "closing store failed", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "pokedex service stopped")
	return nil
}

func (s *Service) ready() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// ListCreatures returns every creature record.
func (s *Service) ListCreatures(ctx context.Context) ([]model.Creature, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	return store.ListCreatures(ctx)
}

// GetCreature returns the creature named name or repository.ErrNotFound.
func (s *Service) GetCreature(ctx context.Context, name string) (model.Creature, error) {
	store, err := s.ready()
	if err != nil {
		return model.Creature{}, err
	}
	return store.FindCreature(ctx, name)
}

// CreateCreature validates in and inserts it.
func (s *Service) CreateCreature(ctx context.Context, in model.NewCreature) (model.Creature, error) {
	store, err := s.ready()
	if err != nil {
		return model.Creature{}, err
	}
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return model.Creature{}, err
	}
	return store.InsertCreature(ctx, in.Creature())
}

// UpdateCreature validates patch and merges it into the creature named name.
func (s *Service) UpdateCreature(ctx context.Context, name string, patch model.CreaturePatch) (model.Creature, error) {
	store, err := s.ready()
	if err != nil {
		return model.Creature{}, err
	}
	patch.Normalize()
	if err := model.Validate(patch); err != nil {
		return model.Creature{}, err
	}
	return store.UpdateCreature(ctx, name, patch)
}

// DeleteCreature removes the creature named name.
func (s *Service) DeleteCreature(ctx context.Context, name string) (repository.DeleteResult, error) {
	store, err := s.ready()
	if err != nil {
		return repository.DeleteResult{}, err
	}
	return store.DeleteCreature(ctx, name)
}

// CreateUser hashes the password and stores the account with no favorites.
func (s *Service) CreateUser(ctx context.Context, in model.NewUser) (model.User, error) {
	store, err := s.ready()
	if err != nil {
		return model.User{}, err
	}
	in.Normalize()
	if err := model.Validate(in); err != nil {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}
	u, err := store.InsertUser(ctx, model.User{
		Username:        in.Username,
		PasswordHash:    hash,
		FavoritePokemon: []string{},
	})
	if err != nil {
		return model.User{}, err
	}
	metrics.RecordUserRegistered()
	return u, nil
}

// Healthy reports whether the service is started and its store answers.
func (s *Service) Healthy(ctx context.Context) error {
	store, err := s.ready()
	if err != nil {
		return err
	}
	if _, err := store.CountCreatures(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}

// GetStats returns store statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started, store, driver := s.started, s.store, s.driver
	s.mu.RUnlock()

	stats := map[string]any{
		"started": started,
		"store":   driver,
	}
	if !started {
		return stats
	}
	if n, err := store.CountCreatures(ctx); err == nil {
		stats["pokemons"] = n
	} else {
		stats["pokemonsError"] = err.Error()
	}
	if n, err := store.CountUsers(ctx); err == nil {
		stats["users"] = n
	} else {
		stats["usersError"] = err.Error()
	}
	return stats
}
