package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pokedex/pkg/logger"
)

// Sentinel results of a single API call.
var (
	ErrConflict    = errors.New("pokemon already exists")
	ErrUnexpected  = errors.New("unexpected response")
	ErrNotVerified = errors.New("stored pokemon differs from the one sent")
)

// envelope mirrors the service's response body.
type envelope struct {
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

// stored is what the service returns for a pokemon.
type stored struct {
	ID string `json:"id"`
	Pokemon
}

// Client talks to the pokedex JSON API.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a new API client with timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *Client) pokemonURL(name string) string {
	return c.baseURL + "/api/pokemons/" + url.PathEscape(name)
}

func (c *Client) do(ctx context.Context, method, target string, body any) (int, envelope, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, envelope{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, envelope{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, envelope{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, envelope{}, fmt.Errorf("failed to read response: %w", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return resp.StatusCode, envelope{}, fmt.Errorf("%w: %s", ErrUnexpected, raw)
		}
	}
	return resp.StatusCode, env, nil
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	code, _, err := c.do(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrUnexpected, code)
	}
	return nil
}

// Create posts p and returns the stored record.
func (c *Client) Create(ctx context.Context, p Pokemon) (stored, error) {
	code, env, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/pokemons", p)
	if err != nil {
		return stored{}, err
	}
	switch code {
	case http.StatusOK:
		var s stored
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return stored{}, fmt.Errorf("%w: %w", ErrUnexpected, err)
		}
		return s, nil
	case http.StatusConflict:
		return stored{}, ErrConflict
	default:
		return stored{}, fmt.Errorf("%w: create status %d: %s", ErrUnexpected, code, env.Payload)
	}
}

// Get fetches the pokemon named name.
func (c *Client) Get(ctx context.Context, name string) (stored, error) {
	code, env, err := c.do(ctx, http.MethodGet, c.pokemonURL(name), nil)
	if err != nil {
		return stored{}, err
	}
	if code != http.StatusOK {
		return stored{}, fmt.Errorf("%w: get status %d", ErrUnexpected, code)
	}
	var s stored
	if err := json.Unmarshal(env.Payload, &s); err != nil {
		return stored{}, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return s, nil
}

// Delete removes the pokemon named name and returns how many were deleted.
func (c *Client) Delete(ctx context.Context, name string) (int64, error) {
	code, env, err := c.do(ctx, http.MethodDelete, c.pokemonURL(name), nil)
	if err != nil {
		return 0, err
	}
	if code != http.StatusOK {
		return 0, fmt.Errorf("%w: delete status %d", ErrUnexpected, code)
	}
	var res struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	if err := json.Unmarshal(env.Payload, &res); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return res.DeletedCount, nil
}

// forEach runs fn for every index in [0, n) on cfg.Workers goroutines.
func forEach(ctx context.Context, cfg *Config, n int, fn func(i int)) {
	indexChan := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				if ctx.Err() != nil {
					continue
				}
				fn(i)
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()
}

// submitPokemons creates every pokemon and records what the service returned.
func submitPokemons(ctx context.Context, cfg *Config, log logger.Logger, client *Client, pokemons []Pokemon, stats *Stats) []bool {
	log.Info(ctx, "submitting pokemons", logger.Int("count", len(pokemons)), logger.Int("workers", cfg.Workers))

	created := make([]bool, len(pokemons))
	var ok, conflict, failed int64

	forEach(ctx, cfg, len(pokemons), func(i int) {
		_, err := client.Create(ctx, pokemons[i])
		switch {
		case err == nil:
			created[i] = true
			atomic.AddInt64(&ok, 1)
		case errors.Is(err, ErrConflict):
			atomic.AddInt64(&conflict, 1)
		default:
			atomic.AddInt64(&failed, 1)
			if cfg.Verbose {
				log.Warn(ctx, "create failed", logger.String("name", pokemons[i].Name), logger.Error(err))
			}
		}
	})

	stats.Created = int(ok)
	stats.Conflicts = int(conflict)
	stats.Failed = int(failed)
	log.Info(ctx, "submission completed",
		logger.Int("created", stats.Created),
		logger.Int("conflicts", stats.Conflicts),
		logger.Int("failed", stats.Failed))
	return created
}
