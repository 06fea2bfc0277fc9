package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-vaultmedia/internal/convert"
)

func newTestLedger(t *testing.T) *BunUploadLedger {
	t.Helper()
	db, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return NewBunUploadLedger(db)
}

func TestRecordAndLookup(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	rec := convert.UploadRecord{
		DocumentPath: "posts/trip.md",
		LocalPath:    "posts/cat.png",
		RemoteURL:    "https://ik.imagekit.io/demo/vault/cat.png",
		FileID:       "f-1",
		Kind:         "embed",
		Size:         3,
	}
	if err := ledger.RecordUpload(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	entry, err := ledger.GetByRemoteURL(ctx, rec.RemoteURL)
	if err != nil {
		t.Fatalf("get by url: %v", err)
	}
	if entry.LocalPath != "posts/cat.png" || entry.FileID != "f-1" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	byLocal, err := ledger.FindByLocalPath(ctx, "posts/cat.png")
	if err != nil {
		t.Fatalf("find by local path: %v", err)
	}
	if byLocal.ID != entry.ID {
		t.Fatalf("lookups disagree: %s vs %s", byLocal.ID, entry.ID)
	}
}

func TestRecordUploadIsIdempotent(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	rec := convert.UploadRecord{
		DocumentPath: "a.md",
		LocalPath:    "img/x.png",
		RemoteURL:    "https://ik.imagekit.io/demo/vault/x.png",
	}
	if err := ledger.RecordUpload(ctx, rec); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := ledger.RecordUpload(ctx, rec); err != nil {
		t.Fatalf("second record: %v", err)
	}

	entries, err := ledger.ListByDocument(ctx, "a.md")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single entry, got %d", len(entries))
	}
}

func TestFindByLocalPathMissing(t *testing.T) {
	ledger := newTestLedger(t)

	_, err := ledger.FindByLocalPath(context.Background(), "never/uploaded.png")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListByDocument(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	for _, rec := range []convert.UploadRecord{
		{DocumentPath: "a.md", LocalPath: "1.png", RemoteURL: "https://ik.imagekit.io/demo/1.png"},
		{DocumentPath: "a.md", LocalPath: "2.png", RemoteURL: "https://ik.imagekit.io/demo/2.png"},
		{DocumentPath: "b.md", LocalPath: "3.png", RemoteURL: "https://ik.imagekit.io/demo/3.png"},
	} {
		if err := ledger.RecordUpload(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := ledger.ListByDocument(ctx, "a.md")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}
