package seeder

import "io"

// ShowHelp prints usage information for the seeder.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Pokedex Seeder
==============

Fills a running pokedex with generated pokemons through the JSON API, then
reads every one back to check it was stored as sent.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:3000")
  -count int
        Number of pokemons to create (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -prefix string
        Name prefix for generated pokemons (default "seed")
  -cleanup
        Delete the generated pokemons after verifying them
  -output string
        Write the generated pokemons to this JSON file
  -verbose
        Log every failed request
  -help
        Show this help message

Examples:
  # Seed 500 pokemons into a local server
  go run ./cmd/seed -count 500

  # Smoke test a deployment without leaving data behind
  go run ./cmd/seed -url http://pokedex:3000 -count 50 -cleanup
`)
}
