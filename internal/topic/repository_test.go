package topic

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"namesmith/app/internal/db"
	"namesmith/app/internal/llm"
)

func TestNewRepositoryRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestLookupReturnsNilForMissingEntry(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	entry, err := repo.Lookup(context.Background(), "never stored")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry for unseen prompt, got %#v", entry)
	}
}

func TestStoreLookupRoundTrip(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	prompt := BuildUserPrompt("planets", "")
	items := []llm.Item{
		{Name: "Mercury", Desc: "The innermost planet. It is small and fast."},
		{Name: "Venus", Desc: "The second planet. It is hot and cloudy."},
	}

	if err := repo.Store(ctx, prompt, items); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	entry, err := repo.Lookup(ctx, prompt)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if entry == nil {
		t.Fatalf("expected stored entry to be found")
	}

	if entry.Address != Address(prompt) {
		t.Errorf("expected address %s, got %s", Address(prompt), entry.Address)
	}

	if entry.Prompt != prompt {
		t.Errorf("expected prompt to be preserved, got %q", entry.Prompt)
	}

	decoded, err := entry.Items()
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}

	if len(decoded) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(decoded))
	}
	for idx, item := range items {
		if decoded[idx] != item {
			t.Errorf("expected item %v at index %d, got %v", item, idx, decoded[idx])
		}
	}
}

func TestLookupIgnoresSurroundingWhitespace(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	prompt := BuildUserPrompt("moons", "")
	items := []llm.Item{{Name: "Io", Desc: "A volcanic moon. It orbits Jupiter."}}

	if err := repo.Store(ctx, prompt, items); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	entry, err := repo.Lookup(ctx, "  "+prompt+"\n")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if entry == nil {
		t.Fatalf("expected whitespace-padded prompt to hit the same address")
	}
}

func TestStoreIsIdempotentPerAddress(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	prompt := BuildUserPrompt("planets", "")
	items := []llm.Item{{Name: "Mars", Desc: "The fourth planet. It is red and dusty."}}

	if err := repo.Store(ctx, prompt, items); err != nil {
		t.Fatalf("first Store returned error: %v", err)
	}
	if err := repo.Store(ctx, prompt, items); err != nil {
		t.Fatalf("second Store returned error: %v", err)
	}

	var count int64
	if err := repo.db.Model(&CacheEntry{}).Where("address = ?", Address(prompt)).Count(&count).Error; err != nil {
		t.Fatalf("counting cache entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one cache entry per address, got %d", count)
	}

	entry, err := repo.Lookup(ctx, prompt)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	decoded, err := entry.Items()
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != items[0] {
		t.Fatalf("expected result unchanged after repeated store, got %v", decoded)
	}
}

func TestStoreOverwritesExistingAddress(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	prompt := BuildUserPrompt("planets", "")
	first := []llm.Item{{Name: "Pluto", Desc: "A dwarf planet. It is small and distant."}}
	second := []llm.Item{{Name: "Neptune", Desc: "The eighth planet. It is blue and windy."}}

	if err := repo.Store(ctx, prompt, first); err != nil {
		t.Fatalf("first Store returned error: %v", err)
	}
	if err := repo.Store(ctx, prompt, second); err != nil {
		t.Fatalf("second Store returned error: %v", err)
	}

	entry, err := repo.Lookup(ctx, prompt)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}

	decoded, err := entry.Items()
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Name != "Neptune" {
		t.Fatalf("expected the later write to win, got %v", decoded)
	}
}

func TestAppendQueryLogWritesOneRowPerCall(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	prompt := BuildUserPrompt("comets", "")

	if err := repo.AppendQueryLog(ctx, prompt); err != nil {
		t.Fatalf("first AppendQueryLog returned error: %v", err)
	}
	if err := repo.AppendQueryLog(ctx, prompt); err != nil {
		t.Fatalf("second AppendQueryLog returned error: %v", err)
	}

	var count int64
	if err := repo.db.Model(&QueryLogEntry{}).Where("address = ?", Address(prompt)).Count(&count).Error; err != nil {
		t.Fatalf("counting query log entries failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two query log rows, got %d", count)
	}
}

func TestAppendQueryLogNeedsNoCacheEntry(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	prompt := BuildUserPrompt("asteroids", "")

	if err := repo.AppendQueryLog(ctx, prompt); err != nil {
		t.Fatalf("AppendQueryLog returned error: %v", err)
	}

	entry, err := repo.Lookup(ctx, prompt)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected no cache entry to exist for logged-only prompt")
	}
}

func setupRepository(t *testing.T) *GormRepository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "repo.db")
	gormDB, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}

	t.Cleanup(func() {
		if closeErr := db.Close(gormDB); closeErr != nil {
			t.Fatalf("closing database failed: %v", closeErr)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if err := Migrate(context.Background(), gormDB, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	repo, err := NewRepository(gormDB, logger)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	return repo
}
