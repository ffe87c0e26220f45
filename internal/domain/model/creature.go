// Package model defines the records managed by the service and the request
// shapes accepted at its boundary.
package model

import (
	"strings"
)

// Creature is a pokemon record. Name is the natural key used for lookup,
// update and delete.
type Creature struct {
	ID    string   `json:"id" bson:"_id"`
	Name  string   `json:"name" bson:"name"`
	Type  string   `json:"type,omitempty" bson:"type,omitempty"`
	Level int      `json:"level,omitempty" bson:"level,omitempty"`
	Moves []string `json:"moves" bson:"moves"`
}

// NewCreature is the accepted body for creating a creature.
type NewCreature struct {
	Name  string   `json:"name" validate:"required,max=64"`
	Type  string   `json:"type" validate:"max=32"`
	Level int      `json:"level" validate:"gte=0,lte=100"`
	Moves []string `json:"moves" validate:"max=16,dive,required,max=64"`
}

// Normalize trims whitespace and drops blank moves.
func (n *NewCreature) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Type = strings.TrimSpace(n.Type)
	n.Moves = cleanMoves(n.Moves)
}

// Creature converts the request into a record without an ID.
func (n NewCreature) Creature() Creature {
	moves := n.Moves
	if moves == nil {
		moves = []string{}
	}
	return Creature{Name: n.Name, Type: n.Type, Level: n.Level, Moves: moves}
}

// CreaturePatch carries a partial update. Nil fields are left untouched.
type CreaturePatch struct {
	Name  *string   `json:"name,omitempty" validate:"omitnil,min=1,max=64"`
	Type  *string   `json:"type,omitempty" validate:"omitnil,max=32"`
	Level *int      `json:"level,omitempty" validate:"omitnil,gte=0,lte=100"`
	Moves *[]string `json:"moves,omitempty" validate:"omitnil,max=16,dive,required,max=64"`
}

// Normalize trims string fields in place.
func (p *CreaturePatch) Normalize() {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		p.Name = &v
	}
	if p.Type != nil {
		v := strings.TrimSpace(*p.Type)
		p.Type = &v
	}
	if p.Moves != nil {
		v := cleanMoves(*p.Moves)
		p.Moves = &v
	}
}

// Empty reports whether the patch sets no field at all.
func (p CreaturePatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Level == nil && p.Moves == nil
}

// Apply merges the set fields of p into c and returns the result.
func (p CreaturePatch) Apply(c Creature) Creature {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Moves != nil {
		c.Moves = append([]string{}, *p.Moves...)
	}
	return c
}

// Fields returns the set fields keyed by their document field name.
func (p CreaturePatch) Fields() map[string]any {
	out := make(map[string]any, 4)
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Type != nil {
		out["type"] = *p.Type
	}
	if p.Level != nil {
		out["level"] = *p.Level
	}
	if p.Moves != nil {
		out["moves"] = *p.Moves
	}
	return out
}

// SplitMoves parses a comma-separated move list as typed into an HTML form.
func SplitMoves(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return cleanMoves(strings.Split(raw, ","))
}

func cleanMoves(moves []string) []string {
	if moves == nil {
		return nil
	}
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
