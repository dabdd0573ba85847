package transcriptcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vidscribe/internal/transcription"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "transcripts.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTranscript(text, language string) *transcription.Transcript {
	return &transcription.Transcript{
		FullText: text,
		Language: language,
		Segments: []transcription.Segment{
			{Text: text, Start: 0, End: 1.5},
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := sampleTranscript("Hello world.", "en")
	if err := store.Put(ctx, "abc:100", "medium", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "abc:100", "medium")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.FullText != want.FullText || got.Language != want.Language {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
	if len(got.Segments) != 1 || got.Segments[0].End != 1.5 {
		t.Fatalf("segments did not survive round trip: %+v", got.Segments)
	}
}

func TestGetMissOnUnknownFingerprint(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Get(context.Background(), "missing:0", "medium")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown fingerprint")
	}
}

func TestGetMissOnModelSizeMismatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "abc:100", "medium", sampleTranscript("Hi.", "en")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, ok, err := store.Get(ctx, "abc:100", "large-v3")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("expected miss when model size differs")
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "abc:100", "medium", sampleTranscript("First pass.", "en")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "abc:100", "large-v3", sampleTranscript("Second pass.", "fr")); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "abc:100", "large-v3")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after replace")
	}
	if got.FullText != "Second pass." || got.Language != "fr" {
		t.Fatalf("expected replaced entry, got %+v", got)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 1 {
		t.Fatalf("expected single entry after replace, got %d", stats.Entries)
	}
}

func TestCorruptPayloadCountsAsMiss(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx,
		"INSERT INTO transcripts (fingerprint, model_size, language, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		"abc:100", "medium", "en", "{not json", "2026-01-01T00:00:00Z",
	)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	_, ok, err := store.Get(ctx, "abc:100", "medium")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("expected corrupt payload to count as miss")
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("expected corrupt row to be deleted, found %d entries", stats.Entries)
	}
}

func TestClearReportsRemovedCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, fp := range []string{"a:1", "b:2", "c:3"} {
		if err := store.Put(ctx, fp, "medium", sampleTranscript("Text.", "en")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	_, ok, err := store.Get(ctx, "a:1", "medium")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("expected empty cache after clear")
	}
}

func TestStatsGroupsByLanguage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := []struct {
		fingerprint string
		language    string
	}{
		{"a:1", "en"},
		{"b:2", "en"},
		{"c:3", "fr"},
	}
	for _, entry := range entries {
		if err := store.Put(ctx, entry.fingerprint, "medium", sampleTranscript("Text.", entry.language)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 3 {
		t.Fatalf("expected 3 entries, got %d", stats.Entries)
	}
	if stats.Languages["en"] != 2 || stats.Languages["fr"] != 1 {
		t.Fatalf("unexpected language grouping: %+v", stats.Languages)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err = Open(path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache", "transcripts.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if store.Path() != path {
		t.Fatalf("Path() = %q, want %q", store.Path(), path)
	}
}
