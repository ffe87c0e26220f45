package repository

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/okian/pokedex/internal/domain/model"
)

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped store errors", t, func() {
		cause := errors.New("socket closed")
		err := WrapKind("mongo.find_creature", ErrDataAccess, cause)

		Convey("Then both kind and cause should match", func() {
			So(errors.Is(err, ErrDataAccess), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "mongo.find_creature: data access failed: socket closed")

			var se *Error
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Op, ShouldEqual, "mongo.find_creature")
		})

		Convey("Then a nil cause should wrap to nil", func() {
			So(WrapKind("op", ErrDataAccess, nil), ShouldBeNil)
		})

		Convey("Then NewKind should carry only the kind", func() {
			So(NewKind("op", ErrNotFound).Error(), ShouldEqual, "op: record not found")
		})

		Convey("Then Outcome should classify them", func() {
			So(Outcome(nil), ShouldEqual, "ok")
			So(Outcome(NewKind("op", ErrNotFound)), ShouldEqual, "not_found")
			So(Outcome(NewKind("op", ErrDuplicate)), ShouldEqual, "duplicate")
			So(Outcome(err), ShouldEqual, "error")
		})
	})
}

func TestClassifyMongoErrors(t *testing.T) {
	Convey("Given errors returned by the mongo driver", t, func() {
		Convey("When no document matched", func() {
			err := classify("mongo.find_creature", mongo.ErrNoDocuments)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When a unique index was violated", func() {
			dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
			err := classify("mongo.insert_creature", dup)
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
		})

		Convey("When anything else failed", func() {
			err := classify("mongo.list_creatures", context.DeadlineExceeded)
			So(errors.Is(err, ErrDataAccess), ShouldBeTrue)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("When there is no error", func() {
			So(classify("op", nil), ShouldBeNil)
		})
	})
}

func TestMongoStoreClosed(t *testing.T) {
	Convey("Given a mongo store that was closed", t, func() {
		s := &MongoStore{}
		s.closed.Store(true)
		ctx := context.Background()

		Convey("Then calls should fail before reaching the driver", func() {
			_, err := s.FindCreature(ctx, "Pikachu")
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
			_, err = s.InsertUser(ctx, model.User{Username: "ash"})
			So(errors.Is(err, ErrDataAccess), ShouldBeTrue)
			So(s.Close(ctx), ShouldBeNil)
		})
	})
}

func TestInstrumentedStore(t *testing.T) {
	Convey("Given an instrumented memory store", t, func() {
		ctx := context.Background()
		s := Instrument(newTestStore())

		Convey("Then it should pass results through unchanged", func() {
			c, err := s.InsertCreature(ctx, model.Creature{Name: "Mew"})
			So(err, ShouldBeNil)
			got, err := s.FindCreature(ctx, "Mew")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, c)

			_, err = s.FindCreature(ctx, "Mewtwo")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			n, err := s.CountCreatures(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)

			_, err = s.InsertUser(ctx, model.User{Username: "misty"})
			So(err, ShouldBeNil)
			u, err := s.CountUsers(ctx)
			So(err, ShouldBeNil)
			So(u, ShouldEqual, 1)

			So(s.Close(ctx), ShouldBeNil)
			_, err = s.ListCreatures(ctx)
			So(errors.Is(err, ErrDataAccess), ShouldBeTrue)
		})
	})
}
