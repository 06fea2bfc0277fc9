package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goliatone/go-vaultmedia/internal/logging"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

// ErrNotCached reports a lookup for an entry the store does not hold.
var ErrNotCached = errors.New("cache: entry not found")

// Config tunes the on-disk image cache.
type Config struct {
	// Dir is the cache directory; created on first write.
	Dir string
	// MaxAge evicts entries older than this during Prune (0 disables).
	MaxAge time.Duration
	// MaxEntries caps the entry count during Prune, oldest first (0 disables).
	MaxEntries int
	Logger     interfaces.Logger
	// Now is swappable for tests.
	Now func() time.Time
}

// Store is a flat-directory cache for downloaded image payloads. Entries are
// plain files named by the caller; retention is enforced by Prune, never
// inline on writes.
type Store struct {
	dir        string
	maxAge     time.Duration
	maxEntries int
	logger     interfaces.Logger
	now        func() time.Time
}

// New constructs a Store.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		dir:        cfg.Dir,
		maxAge:     cfg.MaxAge,
		maxEntries: cfg.MaxEntries,
		logger:     logger,
		now:        now,
	}
}

// Put stores data under name and returns the entry's absolute path.
func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("cache: prepare folder: %w", err)
	}
	target := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("cache: write entry %s: %w", name, err)
	}
	return target, nil
}

// Get returns the payload stored under name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, name)
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read entry %s: %w", name, err)
	}
	return data, nil
}

// Has reports whether name is cached.
func (s *Store) Has(ctx context.Context, name string) bool {
	if ctx.Err() != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, filepath.Base(name)))
	return err == nil && !info.IsDir()
}

type entry struct {
	name    string
	modTime time.Time
}

// Prune applies the retention policy: entries older than MaxAge go first,
// then the oldest survivors until MaxEntries holds. Returns the number of
// removed entries. A missing cache directory prunes nothing.
func (s *Store) Prune(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dirents, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: list entries: %w", err)
	}

	var entries []entry
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, entry{name: d.Name(), modTime: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	removed := 0
	cutoff := time.Time{}
	if s.maxAge > 0 {
		cutoff = s.now().Add(-s.maxAge)
	}

	var kept []entry
	for _, e := range entries {
		if !cutoff.IsZero() && e.modTime.Before(cutoff) {
			if s.remove(e.name) {
				removed++
			}
			continue
		}
		kept = append(kept, e)
	}

	if s.maxEntries > 0 && len(kept) > s.maxEntries {
		for _, e := range kept[:len(kept)-s.maxEntries] {
			if s.remove(e.name) {
				removed++
			}
		}
	}

	if removed > 0 {
		s.logger.Info("cache.pruned", "removed", removed)
	}
	return removed, nil
}

func (s *Store) remove(name string) bool {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		s.logger.Warn("cache.remove.failed", "entry", name, "error", err)
		return false
	}
	return true
}
