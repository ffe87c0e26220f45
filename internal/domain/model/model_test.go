package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNewCreatureValidation(t *testing.T) {
	Convey("Given a new creature request", t, func() {
		Convey("When all fields are valid", func() {
			n := NewCreature{Name: " Pikachu ", Type: "Electric", Level: 12, Moves: []string{" Thunderbolt", "", "Quick Attack "}}
			n.Normalize()

			Convey("Then validation should pass and values be cleaned", func() {
				So(Validate(n), ShouldBeNil)
				So(n.Name, ShouldEqual, "Pikachu")
				So(n.Moves, ShouldResemble, []string{"Thunderbolt", "Quick Attack"})
			})
		})

		Convey("When the name is missing", func() {
			n := NewCreature{Moves: []string{"Tackle"}}
			n.Normalize()
			err := Validate(n)

			Convey("Then validation should fail with ErrInvalidInput", func() {
				So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "name is required")
			})
		})

		Convey("When the level is out of range", func() {
			err := Validate(NewCreature{Name: "Mew", Level: 101})

			Convey("Then validation should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "level must be <= 100")
			})
		})

		Convey("When converted without moves", func() {
			c := NewCreature{Name: "Ditto"}.Creature()

			Convey("Then moves should be an empty list, not null", func() {
				b, err := json.Marshal(c)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"moves":[]`)
			})
		})
	})
}

func TestCreaturePatch(t *testing.T) {
	Convey("Given an existing creature", t, func() {
		base := Creature{ID: "1", Name: "Pikachu", Type: "Electric", Level: 5, Moves: []string{"Thunderbolt"}}

		Convey("When applying a partial patch", func() {
			p := CreaturePatch{Level: intPtr(25)}
			got := p.Apply(base)

			Convey("Then only the named field should change", func() {
				So(got.Level, ShouldEqual, 25)
				So(got.Name, ShouldEqual, base.Name)
				So(got.Type, ShouldEqual, base.Type)
				So(got.Moves, ShouldResemble, base.Moves)
				So(got.ID, ShouldEqual, base.ID)
			})
		})

		Convey("When the patch is decoded from JSON", func() {
			var p CreaturePatch
			So(json.Unmarshal([]byte(`{"type":"Steel","moves":["Iron Tail"]}`), &p), ShouldBeNil)

			Convey("Then Fields should only list the present keys", func() {
				So(p.Empty(), ShouldBeFalse)
				So(p.Fields(), ShouldResemble, map[string]any{"type": "Steel", "moves": []string{"Iron Tail"}})
			})
		})

		Convey("When the patch clears the moves", func() {
			moves := []string{}
			got := CreaturePatch{Moves: &moves}.Apply(base)

			Convey("Then moves should stay an empty list", func() {
				So(got.Moves, ShouldNotBeNil)
				So(got.Moves, ShouldBeEmpty)
				b, err := json.Marshal(got)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"moves":[]`)
			})
		})

		Convey("When the patch blanks the name", func() {
			p := CreaturePatch{Name: strPtr("   ")}
			p.Normalize()

			Convey("Then validation should reject it", func() {
				So(errors.Is(Validate(p), ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When the patch is empty", func() {
			Convey("Then Empty should report it", func() {
				So(CreaturePatch{}.Empty(), ShouldBeTrue)
				So(Validate(CreaturePatch{}), ShouldBeNil)
			})
		})
	})
}

func TestSplitMoves(t *testing.T) {
	Convey("Given form-encoded move lists", t, func() {
		So(SplitMoves("Thunderbolt, Quick Attack ,,Tail Whip"), ShouldResemble, []string{"Thunderbolt", "Quick Attack", "Tail Whip"})
		So(SplitMoves("   "), ShouldResemble, []string{})
	})
}

func TestUserSerialization(t *testing.T) {
	Convey("Given a stored user", t, func() {
		u := User{ID: "u1", Username: "ash", PasswordHash: "$2a$14$secret", FavoritePokemon: []string{}}

		Convey("When marshalled to JSON", func() {
			b, err := json.Marshal(u)
			So(err, ShouldBeNil)

			Convey("Then the hash should never appear", func() {
				So(strings.Contains(string(b), "secret"), ShouldBeFalse)
				So(strings.Contains(string(b), "password"), ShouldBeFalse)
				So(string(b), ShouldContainSubstring, `"favoritePokemon":[]`)
			})
		})

		Convey("When a signup request has a short password", func() {
			err := Validate(NewUser{Username: "ash", Password: "pika"})

			Convey("Then validation should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "password must be at least 6 long")
			})
		})

		Convey("When a signup password is short in runes but long in bytes", func() {
			err := Validate(NewUser{Username: "ash", Password: strings.Repeat("é", 40)})

			Convey("Then validation should fail on the byte length", func() {
				So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "password must be at most 72 bytes")
			})
		})

		Convey("When a signup password is exactly 72 bytes", func() {
			So(Validate(NewUser{Username: "ash", Password: strings.Repeat("é", 36)}), ShouldBeNil)
		})
	})
}
