package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/okian/pokedex/internal/adapters/repository"
	service "github.com/okian/pokedex/internal/app"
	"github.com/okian/pokedex/internal/domain/model"
	"github.com/okian/pokedex/internal/domain/password"
	"github.com/okian/pokedex/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func strPtr(s string) *string { return &s }

func startedService() *service.Service {
	svc := service.New(service.WithBcryptCost(bcrypt.MinCost), service.WithLogger(logger.Nop()))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("When it is used before Start", func() {
			_, err := svc.ListCreatures(ctx)

			Convey("Then it should report ErrNotStarted", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
			})
		})

		Convey("When started and stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats(ctx)
			So(stats["started"], ShouldEqual, true)
			So(stats["store"], ShouldEqual, "memory")
			So(stats["pokemons"], ShouldEqual, 0)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then further calls should fail", func() {
				_, err := svc.GetCreature(ctx, "Pikachu")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.Stop(ctx), ShouldBeNil)
			})

			Convey("Then starting again should open a fresh store", func() {
				So(svc.Start(ctx), ShouldBeNil)
				defer func() { _ = svc.Stop(ctx) }()

				c, err := svc.CreateCreature(ctx, model.NewCreature{Name: "Pikachu"})
				So(err, ShouldBeNil)
				So(c.Name, ShouldEqual, "Pikachu")
				So(svc.Healthy(ctx), ShouldBeNil)
				So(svc.GetStats(ctx)["pokemons"], ShouldEqual, 1)
			})
		})

		Convey("When the driver is unknown", func() {
			bad := service.New(service.WithStoreDriver("redis"), service.WithLogger(logger.Nop()))

			Convey("Then Start should fail", func() {
				So(errors.Is(bad.Start(ctx), service.ErrUnknownDriver), ShouldBeTrue)
			})
		})
	})
}

func TestService_Creatures(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService()
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When creating Pikachu", func() {
			created, err := svc.CreateCreature(ctx, model.NewCreature{Name: "Pikachu", Moves: []string{"Thunderbolt", "Quick Attack"}})
			So(err, ShouldBeNil)

			Convey("Then fetching by name should return the same record", func() {
				got, err := svc.GetCreature(ctx, "Pikachu")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, created)
				So(got.Moves, ShouldResemble, []string{"Thunderbolt", "Quick Attack"})
			})

			Convey("And a partial update should leave other fields alone", func() {
				updated, err := svc.UpdateCreature(ctx, "Pikachu", model.CreaturePatch{Type: strPtr(" Electric ")})
				So(err, ShouldBeNil)
				So(updated.Type, ShouldEqual, "Electric")
				So(updated.Name, ShouldEqual, "Pikachu")
				So(updated.Moves, ShouldResemble, created.Moves)
			})

			Convey("And deleting then fetching should yield not found", func() {
				res, err := svc.DeleteCreature(ctx, "Pikachu")
				So(err, ShouldBeNil)
				So(res.DeletedCount, ShouldEqual, 1)
				_, err = svc.GetCreature(ctx, "Pikachu")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And listing should include it", func() {
				all, err := svc.ListCreatures(ctx)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 1)
			})
		})

		Convey("When creating without a name", func() {
			_, err := svc.CreateCreature(ctx, model.NewCreature{Name: "  "})

			Convey("Then it should fail validation before reaching the store", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
				all, _ := svc.ListCreatures(ctx)
				So(all, ShouldBeEmpty)
			})
		})

		Convey("When updating with an invalid patch", func() {
			_, err := svc.UpdateCreature(ctx, "Pikachu", model.CreaturePatch{Name: strPtr("")})

			Convey("Then it should fail validation", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestService_CreateUser(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService()
		defer func() { _ = svc.Stop(ctx) }()
		hasher := password.NewBcryptHasher(bcrypt.MinCost)

		Convey("When a user signs up", func() {
			u, err := svc.CreateUser(ctx, model.NewUser{Username: "ash", Password: "pikachu123"})
			So(err, ShouldBeNil)

			Convey("Then the stored hash should verify only the original password", func() {
				So(u.PasswordHash, ShouldNotEqual, "pikachu123")
				So(hasher.Verify(u.PasswordHash, "pikachu123"), ShouldBeNil)
				So(hasher.Verify(u.PasswordHash, "pikachu124"), ShouldNotBeNil)
			})

			Convey("And favorites should start empty", func() {
				So(u.FavoritePokemon, ShouldNotBeNil)
				So(u.FavoritePokemon, ShouldBeEmpty)
			})

			Convey("And its JSON form should not expose the password", func() {
				b, _ := json.Marshal(u)
				So(strings.Contains(string(b), u.PasswordHash), ShouldBeFalse)
				So(strings.Contains(string(b), "pikachu123"), ShouldBeFalse)
			})

			Convey("And signing up again with the same username should fail", func() {
				_, err := svc.CreateUser(ctx, model.NewUser{Username: "ash", Password: "another1"})
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
			})
		})

		Convey("When the hasher fails", func() {
			svc := service.New(service.WithHasher(failingHasher{}), service.WithLogger(logger.Nop()))
			So(svc.Start(ctx), ShouldBeNil)

			_, err := svc.CreateUser(ctx, model.NewUser{Username: "brock", Password: "onix1234"})

			Convey("Then the error should surface and nothing be stored", func() {
				So(errors.Is(err, password.ErrHash), ShouldBeTrue)
				So(svc.GetStats(ctx)["users"], ShouldEqual, 0)
			})
		})
	})
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", password.ErrHash }
func (failingHasher) Verify(string, string) error { return password.ErrMismatch }
