package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/toeirei/clipvault/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := "file:test_" + t.Name() + "?mode=memory&cache=shared"
	s, err := New("sqlite", dsn)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testEntry(fp string, seen time.Time) *model.Entry {
	return &model.Entry{
		ID:             "id-" + fp,
		CreatedAt:      seen,
		LastSeenAt:     seen,
		Fingerprint:    fp,
		EncryptedPlain: []byte("ciphertext-" + fp),
	}
}

func TestInsertAndGetByFingerprint(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	e := testEntry("fp1", now)
	e.SourceApp = "com.example.editor"
	e.EncryptedRich = []byte("rich-ciphertext")
	if err := s.InsertEntry(e); err != nil {
		t.Fatalf("InsertEntry failed: %v", err)
	}

	got, err := s.GetEntryByFingerprint("fp1")
	if err != nil {
		t.Fatalf("GetEntryByFingerprint failed: %v", err)
	}
	if got == nil {
		t.Fatal("entry not found")
	}
	if got.ID != e.ID || got.SourceApp != "com.example.editor" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if string(got.EncryptedPlain) != "ciphertext-fp1" || string(got.EncryptedRich) != "rich-ciphertext" {
		t.Fatal("ciphertext columns not round-tripped")
	}

	missing, err := s.GetEntryByFingerprint("nope")
	if err != nil {
		t.Fatalf("lookup of absent fingerprint failed: %v", err)
	}
	if missing != nil {
		t.Fatal("absent fingerprint returned an entry")
	}
}

func TestFingerprintUniqueIndex(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	if err := s.InsertEntry(testEntry("fp1", now)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	dup := testEntry("fp1", now)
	dup.ID = "different-id"
	if err := s.InsertEntry(dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate from schema constraint, got %v", err)
	}
}

func TestTouchEntryUpdatesTimestampOnly(t *testing.T) {
	s := newTestStore(t)
	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	e := testEntry("fp1", created)
	if err := s.InsertEntry(e); err != nil {
		t.Fatal(err)
	}
	seen := created.Add(30 * time.Minute)
	if err := s.TouchEntry(e.ID, seen); err != nil {
		t.Fatalf("TouchEntry failed: %v", err)
	}

	got, err := s.GetEntry(e.ID)
	if err != nil || got == nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if !got.LastSeenAt.Equal(seen) {
		t.Fatalf("last_seen_at = %v, want %v", got.LastSeenAt, seen)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatal("created_at changed on touch")
	}
	if string(got.EncryptedPlain) != "ciphertext-fp1" {
		t.Fatal("content changed on touch")
	}
}

func TestListOrderPinnedFirstThenRecency(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 4; i++ {
		e := testEntry(fmt.Sprintf("fp%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := s.InsertEntry(e); err != nil {
			t.Fatal(err)
		}
	}
	// Pin the oldest entry; it should lead the list despite its age.
	if err := s.SetEntryPinned("id-fp0", true); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListEntries()
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(list))
	}
	wantOrder := []string{"id-fp0", "id-fp3", "id-fp2", "id-fp1"}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Fatalf("position %d: got %s, want %s (full order: %v)", i, list[i].ID, want, ids(list))
		}
	}
}

func TestPruneUnpinned(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		e := testEntry(fmt.Sprintf("fp%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := s.InsertEntry(e); err != nil {
			t.Fatal(err)
		}
	}
	// Pin the oldest; it must survive pruning and not count.
	if err := s.SetEntryPinned("id-fp0", true); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.PruneUnpinned(2)
	if err != nil {
		t.Fatalf("PruneUnpinned failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted %d entries, want 2", deleted)
	}

	count, err := s.CountUnpinned()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("unpinned count = %d, want 2", count)
	}
	// The oldest unpinned entries (fp1, fp2) are the ones removed.
	for _, id := range []string{"id-fp0", "id-fp3", "id-fp4"} {
		if e, err := s.GetEntry(id); err != nil || e == nil {
			t.Fatalf("entry %s missing after prune (err=%v)", id, err)
		}
	}
	for _, id := range []string{"id-fp1", "id-fp2"} {
		if e, _ := s.GetEntry(id); e != nil {
			t.Fatalf("entry %s survived prune", id)
		}
	}

	// A second prune at the same ceiling is a no-op.
	deleted, err = s.PruneUnpinned(2)
	if err != nil || deleted != 0 {
		t.Fatalf("re-prune: deleted=%d err=%v", deleted, err)
	}
}

func TestClearUnpinnedAndClearAll(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	if err := s.InsertEntry(testEntry("fp1", now)); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertEntry(testEntry("fp2", now)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEntryPinned("id-fp2", true); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearUnpinned(); err != nil {
		t.Fatalf("ClearUnpinned failed: %v", err)
	}
	list, err := s.ListEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "id-fp2" {
		t.Fatalf("expected only pinned entry, got %v", ids(list))
	}

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	list, err = s.ListEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatal("ClearAll left entries behind")
	}
}

func TestImportEntriesSkipsExisting(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	if err := s.InsertEntry(testEntry("fp1", now)); err != nil {
		t.Fatal(err)
	}

	inserted, err := s.ImportEntries([]model.Entry{
		*testEntry("fp1", now), // duplicate, skipped
		*testEntry("fp2", now),
		*testEntry("fp3", now),
	})
	if err != nil {
		t.Fatalf("ImportEntries failed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("inserted = %d, want 2", inserted)
	}
	list, err := s.ListEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 entries after import, got %d", len(list))
	}
}

func TestUnsupportedBackend(t *testing.T) {
	if _, err := New("oracle", "dsn"); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func ids(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
