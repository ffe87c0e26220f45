package seeder

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Count      int           // Number of pokemons to create
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Prefix     string        // Name prefix so runs do not collide
	Cleanup    bool          // Delete everything created once verified
	OutputFile string        // Optional JSON dump of the generated pokemons
	Verbose    bool          // Log every failure
}

// Pokemon is the body posted to /api/pokemons.
type Pokemon struct {
	Name  string   `json:"name"`
	Type  string   `json:"type,omitempty"`
	Level int      `json:"level,omitempty"`
	Moves []string `json:"moves"`
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Created   int
	Conflicts int
	Failed    int
	Verified  int
	Mismatch  int
	Deleted   int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
