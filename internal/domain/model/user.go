package model

import "strings"

// User is a registered account. PasswordHash never leaves the process as JSON.
type User struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`

	PasswordHash string `json:"-" bson:"password"`

	// FavoritePokemon holds creature names. Nothing populates it yet.
	FavoritePokemon []string `json:"favoritePokemon" bson:"favoritePokemon"`
}

// NewUser is the accepted signup body.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	// bcrypt ignores everything past 72 bytes.
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// Normalize trims the username. The password is kept verbatim.
func (n *NewUser) Normalize() {
	n.Username = strings.TrimSpace(n.Username)
}
