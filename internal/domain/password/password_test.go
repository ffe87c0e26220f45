package password

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	Convey("Given a bcrypt hasher at minimum cost", t, func() {
		h := NewBcryptHasher(bcrypt.MinCost)

		Convey("When hashing a password", func() {
			hash, err := h.Hash("pikapika")
			So(err, ShouldBeNil)

			Convey("Then the hash should differ from the plaintext", func() {
				So(hash, ShouldNotEqual, "pikapika")
				So(strings.Contains(hash, "pikapika"), ShouldBeFalse)
			})

			Convey("And the right password should verify", func() {
				So(h.Verify(hash, "pikapika"), ShouldBeNil)
			})

			Convey("And any other password should be rejected", func() {
				for _, wrong := range []string{"pikapikA", "", "pikapika ", "raichu"} {
					So(errors.Is(h.Verify(hash, wrong), ErrMismatch), ShouldBeTrue)
				}
			})
		})

		Convey("When hashing the same password twice", func() {
			a, _ := h.Hash("secret1")
			b, _ := h.Hash("secret1")

			Convey("Then the salts should make the hashes differ", func() {
				So(a, ShouldNotEqual, b)
			})
		})

		Convey("When the password exceeds bcrypt's limit", func() {
			_, err := h.Hash(strings.Repeat("x", 73))

			Convey("Then hashing should fail with ErrHash", func() {
				So(errors.Is(err, ErrHash), ShouldBeTrue)
			})
		})

		Convey("When verifying against garbage", func() {
			Convey("Then it should report a mismatch", func() {
				So(errors.Is(h.Verify("not-a-hash", "x"), ErrMismatch), ShouldBeTrue)
			})
		})
	})
}

func TestNewBcryptHasherCost(t *testing.T) {
	Convey("Given out of range costs", t, func() {
		So(NewBcryptHasher(0).Cost(), ShouldEqual, DefaultCost)
		So(NewBcryptHasher(99).Cost(), ShouldEqual, DefaultCost)
		So(NewBcryptHasher(10).Cost(), ShouldEqual, 10)
	})
}
