package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"forumdump/pkg/errors"
	"forumdump/pkg/layout"
	"forumdump/pkg/logger"
	"forumdump/pkg/storage"
)

// Outcome classifies how FetchAndSave obtained a resource
type Outcome int

const (
	// Skipped means the artifact was already on disk and no request was made
	Skipped Outcome = iota
	// Fetched means the resource was requested and persisted
	Fetched
	// Unavailable means the request failed; the caller skips the subtree
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Fetched:
		return "fetched"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the payload of a resource together with how it was obtained.
// Data is nil when Outcome is Unavailable.
type Result struct {
	Data    json.RawMessage
	Outcome Outcome
	Path    string
}

// OK reports whether Data holds a payload
func (r Result) OK() bool {
	return r.Outcome != Unavailable
}

// Fetcher retrieves a resource from the forum
type Fetcher interface {
	GetRaw(ctx context.Context, resourcePath string) (json.RawMessage, error)
}

// Stats counts outcomes since the cache was created
type Stats struct {
	Fetched     int
	Skipped     int
	Unavailable int
}

// Cache serves resources from the archive and fetches the ones that are missing.
// Artifacts are write-once: an existing file is never refreshed.
type Cache struct {
	fetcher Fetcher
	store   *storage.Manager
	logger  logger.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a cache persisting into store
func New(fetcher Fetcher, store *storage.Manager, log logger.Logger) *Cache {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Cache{
		fetcher: fetcher,
		store:   store,
		logger:  log,
	}
}

// FetchAndSave returns the artifact for resourcePath stored at pos.
// Network failures are absorbed into an Unavailable result; a cached artifact that
// cannot be decoded, or a failed write, is returned as an error.
func (c *Cache) FetchAndSave(ctx context.Context, depth int, resourcePath string, pos layout.Position) (Result, error) {
	key, err := layout.KeyFor(pos, resourcePath)
	if err != nil {
		return Result{}, err
	}
	path := c.store.PathOf(key)

	if c.store.Exists(key) {
		data, err := c.store.ReadJSON(key)
		if err != nil {
			return Result{}, err
		}
		logger.LogSkipped(c.logger, depth, resourcePath)
		c.count(Skipped)
		return Result{Data: data, Outcome: Skipped, Path: path}, nil
	}

	data, err := c.fetcher.GetRaw(ctx, resourcePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		logger.LogFetchError(c.logger, depth, resourcePath, err)
		c.count(Unavailable)
		return Result{Outcome: Unavailable, Path: path}, nil
	}

	if _, err := c.store.WriteJSON(key, data); err != nil {
		return Result{}, fmt.Errorf("failed to persist %s: %w", resourcePath, err)
	}
	logger.LogFetched(c.logger, depth, resourcePath)
	c.count(Fetched)

	return Result{Data: data, Outcome: Fetched, Path: path}, nil
}

// Decode unmarshals the payload of r into v
func (r Result) Decode(v interface{}) error {
	if !r.OK() {
		return errors.ErrResourceUnavailable
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrDecodeFailure, r.Path, err)
	}
	return nil
}

func (c *Cache) count(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch o {
	case Skipped:
		c.stats.Skipped++
	case Fetched:
		c.stats.Fetched++
	case Unavailable:
		c.stats.Unavailable++
	}
}

// Stats returns a snapshot of the outcome counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
