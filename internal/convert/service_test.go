package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-vaultmedia/internal/pathclass"
	"github.com/goliatone/go-vaultmedia/internal/scan"
	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

type memoryVault struct {
	docs     map[string]string
	binaries map[string][]byte
	deleted  []string
}

var _ interfaces.Vault = (*memoryVault)(nil)

func (m *memoryVault) ReadDocument(ctx context.Context, path string) (string, error) {
	text, ok := m.docs[path]
	if !ok {
		return "", fmt.Errorf("memory: document %s not found", path)
	}
	return text, nil
}

func (m *memoryVault) WriteDocument(ctx context.Context, path, text string) error {
	m.docs[path] = text
	return nil
}

func (m *memoryVault) ListDocuments(ctx context.Context, scope string) ([]string, error) {
	var out []string
	for path := range m.docs {
		out = append(out, path)
	}
	return out, nil
}

func (m *memoryVault) ReadBinary(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.binaries[path]
	if !ok {
		return nil, fmt.Errorf("memory: binary %s not found", path)
	}
	return data, nil
}

func (m *memoryVault) WriteBinary(ctx context.Context, path string, data []byte) error {
	m.binaries[path] = data
	return nil
}

func (m *memoryVault) DeleteFile(ctx context.Context, path string) error {
	if _, ok := m.binaries[path]; !ok {
		return fmt.Errorf("memory: binary %s not found", path)
	}
	delete(m.binaries, path)
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memoryVault) Exists(ctx context.Context, path string) (bool, error) {
	if _, ok := m.docs[path]; ok {
		return true, nil
	}
	_, ok := m.binaries[path]
	return ok, nil
}

type stubUploader struct {
	calls   []interfaces.UploadRequest
	failFor string
}

func (u *stubUploader) Upload(ctx context.Context, req interfaces.UploadRequest) (*interfaces.UploadResult, error) {
	u.calls = append(u.calls, req)
	if u.failFor != "" && req.FileName == u.failFor {
		return nil, errors.New("stub: upload rejected")
	}
	return &interfaces.UploadResult{
		FileID:    fmt.Sprintf("f-%d", len(u.calls)),
		Name:      req.FileName,
		RemoteURL: "https://ik.imagekit.io/demo/vault/" + req.FileName,
		Size:      int64(len(req.Data)),
	}, nil
}

type stubRecorder struct {
	records []UploadRecord
}

func (r *stubRecorder) RecordUpload(ctx context.Context, rec UploadRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func scanRefs(t *testing.T, v interfaces.Vault, docPath string) []*scan.Reference {
	t.Helper()
	scanner := scan.New(scan.Config{
		Vault:      v,
		Classifier: pathclass.New(pathclass.Config{URLEndpoint: "https://ik.imagekit.io/demo"}),
	})
	refs, err := scanner.ScanDocument(context.Background(), docPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return refs
}

func TestConvertEmbedReference(t *testing.T) {
	v := &memoryVault{
		docs:     map[string]string{"posts/trip.md": "intro\n![[cat.png]]\noutro\n"},
		binaries: map[string][]byte{"posts/cat.png": {1, 2, 3}},
	}
	uploader := &stubUploader{}
	recorder := &stubRecorder{}
	svc := New(Config{Vault: v, Uploader: uploader, Recorder: recorder, UploadFolder: "vault"})

	summary, err := svc.Convert(context.Background(), scanRefs(t, v, "posts/trip.md"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	want := "intro\n![cat.png](https://ik.imagekit.io/demo/vault/cat.png)\noutro\n"
	if v.docs["posts/trip.md"] != want {
		t.Fatalf("document = %q, want %q", v.docs["posts/trip.md"], want)
	}
	if len(recorder.records) != 1 || recorder.records[0].LocalPath != "posts/cat.png" {
		t.Fatalf("unexpected ledger records %+v", recorder.records)
	}
	if len(v.deleted) != 0 {
		t.Fatal("local file must survive without DeleteAfterUpload")
	}
}

func TestConvertFrontmatterReference(t *testing.T) {
	doc := "---\ntitle: Trip\nbanner_image: img/banner.png\n---\nbody\n"
	v := &memoryVault{
		docs:     map[string]string{"trip.md": doc},
		binaries: map[string][]byte{"img/banner.png": {9}},
	}
	svc := New(Config{Vault: v, Uploader: &stubUploader{}})

	summary, err := svc.Convert(context.Background(), scanRefs(t, v, "trip.md"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	updated := v.docs["trip.md"]
	if !strings.Contains(updated, "banner_image: https://ik.imagekit.io/demo/vault/banner.png") {
		t.Fatalf("frontmatter not rewritten: %q", updated)
	}
	if !strings.Contains(updated, "title: Trip") || !strings.HasSuffix(updated, "body\n") {
		t.Fatalf("sibling content disturbed: %q", updated)
	}
}

func TestConvertRepeatedEmbedTargetsEachOccurrence(t *testing.T) {
	v := &memoryVault{
		docs:     map[string]string{"dup.md": "![[a.png]]\nmiddle\n![[a.png]]\n"},
		binaries: map[string][]byte{"a.png": {1}},
	}
	svc := New(Config{Vault: v, Uploader: &stubUploader{}})

	summary, err := svc.Convert(context.Background(), scanRefs(t, v, "dup.md"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if strings.Contains(v.docs["dup.md"], "![[") {
		t.Fatalf("embed left behind: %q", v.docs["dup.md"])
	}
}

func TestConvertItemFailureDoesNotAbortBatch(t *testing.T) {
	v := &memoryVault{
		docs:     map[string]string{"mix.md": "![[missing.png]]\n![[ok.png]]\n"},
		binaries: map[string][]byte{"ok.png": {1}},
	}
	svc := New(Config{Vault: v, Uploader: &stubUploader{}})

	summary, err := svc.Convert(context.Background(), scanRefs(t, v, "mix.md"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !errors.Is(summary.Errors[0].Err, ErrBinaryNotFound) {
		t.Fatalf("expected ErrBinaryNotFound, got %v", summary.Errors[0].Err)
	}
	if !strings.Contains(v.docs["mix.md"], "![ok.png](") {
		t.Fatalf("surviving item not converted: %q", v.docs["mix.md"])
	}
	if !strings.Contains(v.docs["mix.md"], "![[missing.png]]") {
		t.Fatalf("failed item must stay untouched: %q", v.docs["mix.md"])
	}
}

// failingWriteVault rejects document writes for the configured paths.
type failingWriteVault struct {
	*memoryVault
	rejectWrites map[string]bool
}

func (f *failingWriteVault) WriteDocument(ctx context.Context, path, text string) error {
	if f.rejectWrites[path] {
		f.rejectWrites[path] = false
		return fmt.Errorf("memory: write %s rejected", path)
	}
	return f.memoryVault.WriteDocument(ctx, path, text)
}

func TestConvertWriteFailureDoesNotShiftOccurrences(t *testing.T) {
	inner := &memoryVault{
		docs:     map[string]string{"dup.md": "FIRST ![[a.png]]\nSECOND ![[a.png]]\n"},
		binaries: map[string][]byte{"a.png": {1}},
	}
	refs := scanRefs(t, inner, "dup.md")
	// First item's write fails after a successful upload.
	v := &failingWriteVault{memoryVault: inner, rejectWrites: map[string]bool{"dup.md": true}}
	svc := New(Config{Vault: v, Uploader: &stubUploader{}})

	summary, err := svc.Convert(context.Background(), refs)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	want := "FIRST ![[a.png]]\nSECOND ![a.png](https://ik.imagekit.io/demo/vault/a.png)\n"
	if inner.docs["dup.md"] != want {
		t.Fatalf("document = %q, want %q", inner.docs["dup.md"], want)
	}
}

func TestConvertSkipsUnselected(t *testing.T) {
	v := &memoryVault{
		docs:     map[string]string{"pick.md": "![[a.png]]\n![[b.png]]\n"},
		binaries: map[string][]byte{"a.png": {1}, "b.png": {2}},
	}
	refs := scanRefs(t, v, "pick.md")
	refs[0].Selected = false

	svc := New(Config{Vault: v, Uploader: &stubUploader{}})
	summary, err := svc.Convert(context.Background(), refs)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !strings.Contains(v.docs["pick.md"], "![[a.png]]") {
		t.Fatalf("unselected reference must stay untouched: %q", v.docs["pick.md"])
	}
}

func TestConvertDeleteAfterUpload(t *testing.T) {
	v := &memoryVault{
		docs:     map[string]string{"del.md": "![[a.png]]\n![[a.png]]\n"},
		binaries: map[string][]byte{"a.png": {1}},
	}
	svc := New(Config{Vault: v, Uploader: &stubUploader{}, DeleteAfterUpload: true})

	summary, err := svc.Convert(context.Background(), scanRefs(t, v, "del.md"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(v.deleted) != 1 || v.deleted[0] != "a.png" {
		t.Fatalf("expected a single delete of a.png, got %v", v.deleted)
	}
}

func TestConvertDeleteSkipsFilesWithFailedReferences(t *testing.T) {
	inner := &memoryVault{
		docs: map[string]string{
			"one.md": "![[a.png]]\n",
			"two.md": "![[a.png]]\n",
		},
		binaries: map[string][]byte{"a.png": {1}},
	}
	refs := append(scanRefs(t, inner, "one.md"), scanRefs(t, inner, "two.md")...)
	// The second document's write fails, so it keeps pointing at the local file.
	v := &failingWriteVault{memoryVault: inner, rejectWrites: map[string]bool{"two.md": true}}
	svc := New(Config{Vault: v, Uploader: &stubUploader{}, DeleteAfterUpload: true})

	summary, err := svc.Convert(context.Background(), refs)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(inner.deleted) != 0 {
		t.Fatalf("file with a failed sibling reference must survive, deleted %v", inner.deleted)
	}
	if _, ok := inner.binaries["a.png"]; !ok {
		t.Fatal("local binary removed despite failed reference")
	}
}

func TestConvertResolvesFromAttachmentsFolder(t *testing.T) {
	v := &memoryVault{
		docs:     map[string]string{"posts/note.md": "![[photo.png]]\n"},
		binaries: map[string][]byte{"attachments/photo.png": {7}},
	}
	uploader := &stubUploader{}
	svc := New(Config{Vault: v, Uploader: uploader, AttachmentsFolder: "attachments"})

	summary, err := svc.Convert(context.Background(), scanRefs(t, v, "posts/note.md"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(uploader.calls) != 1 || uploader.calls[0].FileName != "photo.png" {
		t.Fatalf("unexpected upload calls %+v", uploader.calls)
	}
}

func TestUploadNameSlugsStem(t *testing.T) {
	if got := uploadName("img/My Summer Trip.PNG"); got != "my-summer-trip.png" {
		t.Fatalf("uploadName = %q", got)
	}
}
