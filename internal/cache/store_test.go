package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeAged(t *testing.T, dir, name string, age time.Duration, now time.Time) {
	t.Helper()
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(name), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	stamp := now.Add(-age)
	if err := os.Chtimes(target, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := New(Config{Dir: filepath.Join(t.TempDir(), "images")})
	ctx := context.Background()

	if _, err := s.Put(ctx, "cat.png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !s.Has(ctx, "cat.png") {
		t.Fatal("expected entry to exist")
	}
	data, err := s.Get(ctx, "cat.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != string([]byte{1, 2, 3}) {
		t.Fatalf("payload = %v", data)
	}
}

func TestGetMissing(t *testing.T) {
	s := New(Config{Dir: t.TempDir()})
	if _, err := s.Get(context.Background(), "nope.png"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}
}

func TestPruneByAge(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	writeAged(t, dir, "old.png", 48*time.Hour, now)
	writeAged(t, dir, "fresh.png", time.Hour, now)

	s := New(Config{Dir: dir, MaxAge: 24 * time.Hour, Now: func() time.Time { return now }})
	removed, err := s.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if s.Has(context.Background(), "old.png") || !s.Has(context.Background(), "fresh.png") {
		t.Fatal("wrong entry pruned")
	}
}

func TestPruneByCountOldestFirst(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	writeAged(t, dir, "a.png", 3*time.Hour, now)
	writeAged(t, dir, "b.png", 2*time.Hour, now)
	writeAged(t, dir, "c.png", time.Hour, now)

	s := New(Config{Dir: dir, MaxEntries: 2, Now: func() time.Time { return now }})
	removed, err := s.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	ctx := context.Background()
	if s.Has(ctx, "a.png") {
		t.Fatal("oldest entry should be evicted first")
	}
	if !s.Has(ctx, "b.png") || !s.Has(ctx, "c.png") {
		t.Fatal("newer entries must survive")
	}
}

func TestPruneMissingDir(t *testing.T) {
	s := New(Config{Dir: filepath.Join(t.TempDir(), "never-created")})
	removed, err := s.Prune(context.Background())
	if err != nil || removed != 0 {
		t.Fatalf("prune = %d, %v", removed, err)
	}
}
