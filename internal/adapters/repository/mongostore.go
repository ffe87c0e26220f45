package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okian/pokedex/internal/domain/model"
)

const defaultConnectTimeout = 10 * time.Second

// MongoStore is a Store backed by a pooled MongoDB client.
type MongoStore struct {
	client    *mongo.Client
	creatures *mongo.Collection
	users     *mongo.Collection
	closed    atomic.Bool

	creatureColl   string
	userColl       string
	connectTimeout time.Duration
	opTimeout      time.Duration
}

// NewMongoStore connects to uri, pings the deployment and ensures the unique
// indexes on creature name and username exist.
func NewMongoStore(ctx context.Context, uri, database string, opts ...MongoOption) (*MongoStore, error) {
	const op = "mongo.open"
	s := &MongoStore{
		creatureColl:   CreatureCollection,
		userColl:       UserCollection,
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	cctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(s.connectTimeout).
		SetServerSelectionTimeout(s.connectTimeout))
	if err != nil {
		return nil, WrapKind(op, ErrDataAccess, err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, WrapKind(op, ErrDataAccess, err)
	}

	db := client.Database(database)
	s.client = client
	s.creatures = db.Collection(s.creatureColl)
	s.users = db.Collection(s.userColl)

	if err := s.ensureIndexes(cctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	const op = "mongo.ensure_indexes"
	unique := options.Index().SetUnique(true)
	if _, err := s.creatures.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}); err != nil {
		return WrapKind(op, ErrDataAccess, err)
	}
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}); err != nil {
		return WrapKind(op, ErrDataAccess, err)
	}
	return nil
}

func (s *MongoStore) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	if s.closed.Load() {
		return ctx, func() {}, WrapKind(op, ErrDataAccess, ErrClosed)
	}
	if s.opTimeout > 0 {
		c, cancel := context.WithTimeout(ctx, s.opTimeout)
		return c, cancel, nil
	}
	return ctx, func() {}, nil
}

// ListCreatures returns every creature document.
func (s *MongoStore) ListCreatures(ctx context.Context) ([]model.Creature, error) {
	const op = "mongo.list_creatures"
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cur, err := s.creatures.Find(ctx, bson.D{})
	if err != nil {
		return nil, classify(op, err)
	}
	out := []model.Creature{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

// FindCreature returns the creature named name.
func (s *MongoStore) FindCreature(ctx context.Context, name string) (model.Creature, error) {
	const op = "mongo.find_creature"
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return model.Creature{}, err
	}
	defer cancel()

	var c model.Creature
	if err := s.creatures.FindOne(ctx, byName(name)).Decode(&c); err != nil {
		return model.Creature{}, classify(op, err)
	}
	return c, nil
}

// InsertCreature stores a new creature document.
func (s *MongoStore) InsertCreature(ctx context.Context, c model.Creature) (model.Creature, error) {
	const op = "mongo.insert_creature"
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return model.Creature{}, err
	}
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Moves == nil {
		c.Moves = []string{}
	}
	if _, err := s.creatures.InsertOne(ctx, c); err != nil {
		return model.Creature{}, classify(op, err)
	}
	return c, nil
}

// UpdateCreature applies patch with $set and returns the post-update document.
func (s *MongoStore) UpdateCreature(ctx context.Context, name string, patch model.CreaturePatch) (model.Creature, error) {
	if patch.Empty() {
		return s.FindCreature(ctx, name)
	}
	const op = "mongo.update_creature"
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return model.Creature{}, err
	}
	defer cancel()

	update := bson.D{{Key: "$set", Value: bson.M(patch.Fields())}}
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.Creature
	if err := s.creatures.FindOneAndUpdate(ctx, byName(name), update, after).Decode(&c); err != nil {
		return model.Creature{}, classify(op, err)
	}
	return c, nil
}

// DeleteCreature removes the creature named name, if any.
func (s *MongoStore) DeleteCreature(ctx context.Context, name string) (DeleteResult, error) {
	const op = "mongo.delete_creature"
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return DeleteResult{}, err
	}
	defer cancel()

	res, err := s.creatures.DeleteOne(ctx, byName(name))
	if err != nil {
		return DeleteResult{}, classify(op, err)
	}
	return DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// CountCreatures returns the number of creature documents.
func (s *MongoStore) CountCreatures(ctx context.Context) (int, error) {
	return s.count(ctx, "mongo.count_creatures", s.creatures)
}

// InsertUser stores a new account document.
func (s *MongoStore) InsertUser(ctx context.Context, u model.User) (model.User, error) {
	const op = "mongo.insert_user"
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return model.User{}, err
	}
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.FavoritePokemon == nil {
		u.FavoritePokemon = []string{}
	}
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return model.User{}, classify(op, err)
	}
	return u, nil
}

// FindUser returns the account named username.
func (s *MongoStore) FindUser(ctx context.Context, username string) (model.User, error) {
	const op = "mongo.find_user"
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return model.User{}, err
	}
	defer cancel()

	var u model.User
	if err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&u); err != nil {
		return model.User{}, classify(op, err)
	}
	return u, nil
}

// CountUsers returns the number of account documents.
func (s *MongoStore) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, "mongo.count_users", s.users)
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return WrapKind("mongo.close", ErrDataAccess, err)
	}
	return nil
}

func (s *MongoStore) count(ctx context.Context, op string, coll *mongo.Collection) (int, error) {
	ctx, cancel, err := s.begin(ctx, op)
	if err != nil {
		return 0, err
	}
	defer cancel()

	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, classify(op, err)
	}
	return int(n), nil
}

func byName(name string) bson.D {
	return bson.D{{Key: "name", Value: name}}
}

// classify maps driver errors onto the package's kinds.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return NewKind(op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return WrapKind(op, ErrDuplicate, err)
	default:
		return WrapKind(op, ErrDataAccess, err)
	}
}
