package resumes

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"career-backend/internal/shared/storage/object"
	"career-backend/internal/shared/storage/object/local"
)

type recordingStore struct {
	object.ObjectStore
	deleted []string
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.ObjectStore.Delete(ctx, key)
}

type failingRepo struct {
	*MemoryRepo
}

func (failingRepo) Create(ctx context.Context, r Resume) error {
	return errors.New("db down")
}

func newTestService(t *testing.T, repo ResumesRepo) (*Service, *recordingStore) {
	t.Helper()
	store := &recordingStore{ObjectStore: local.New(t.TempDir())}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Service{Store: store, Repo: repo, Now: func() time.Time { return fixed }}, store
}

func TestUploadStoresOriginalAndText(t *testing.T) {
	svc, store := newTestService(t, NewMemoryRepo())
	ctx := context.Background()

	res, err := svc.Upload(ctx, "user-1", "cv.txt", strings.NewReader("Go engineer\nKubernetes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ID == "" || res.StorageKey == "" {
		t.Fatalf("expected id and storage key, got %+v", res)
	}
	if res.Text != "Go engineer\nKubernetes" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if !strings.HasPrefix(res.MimeType, "text/plain") {
		t.Fatalf("unexpected mime %q", res.MimeType)
	}

	rc, err := store.Open(ctx, res.StorageKey)
	if err != nil {
		t.Fatalf("Open original: %v", err)
	}
	raw, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(raw) != "Go engineer\nKubernetes" {
		t.Fatalf("original not stored verbatim: %q", raw)
	}

	text, err := svc.ResumeText(ctx, "user-1", res.ID)
	if err != nil || text != res.Text {
		t.Fatalf("ResumeText = %q, %v", text, err)
	}
}

func TestUploadRejectsEmptyAndUnsupported(t *testing.T) {
	svc, store := newTestService(t, NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "user-1", "cv.txt", strings.NewReader("")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty file, got %v", err)
	}
	if _, err := svc.Upload(ctx, "user-1", "", strings.NewReader("x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if _, err := svc.Upload(ctx, "user-1", "../cv.txt", strings.NewReader("x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for traversal name, got %v", err)
	}

	png := []byte("\x89PNG\r\n\x1a\n0000")
	if _, err := svc.Upload(ctx, "user-1", "photo.png", strings.NewReader(string(png))); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for image, got %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected unsupported upload to be discarded, got %v", store.deleted)
	}
}

func TestUploadWhitespaceOnlyHasNoText(t *testing.T) {
	svc, store := newTestService(t, NewMemoryRepo())
	if _, err := svc.Upload(context.Background(), "user-1", "cv.txt", strings.NewReader("   \n  ")); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected object discarded, got %v", store.deleted)
	}
}

func TestUploadDiscardsObjectWhenInsertFails(t *testing.T) {
	svc, store := newTestService(t, failingRepo{NewMemoryRepo()})
	ctx := context.Background()

	_, err := svc.Upload(ctx, "user-1", "cv.txt", strings.NewReader("text"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected one discarded object, got %v", store.deleted)
	}
	if _, err := store.Open(ctx, store.deleted[0]); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected object removed, got %v", err)
	}
}

func TestResumeTextIsScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryRepo())
	ctx := context.Background()

	res, err := svc.Upload(ctx, "user-1", "cv.txt", strings.NewReader("mine"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.ResumeText(ctx, "user-2", res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestResumeTextReextractsWhenTextMissing(t *testing.T) {
	repo := NewMemoryRepo()
	svc, store := newTestService(t, repo)
	ctx := context.Background()

	stored, err := store.Save(ctx, "user-1", "cv.md", strings.NewReader("# Jane"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Create(ctx, Resume{ID: "r-1", UserID: "user-1", FileName: "cv.md", MimeType: stored.ContentType, StorageKey: stored.Key}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	text, err := svc.ResumeText(ctx, "user-1", "r-1")
	if err != nil {
		t.Fatalf("ResumeText: %v", err)
	}
	if text != "# Jane" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestMemoryRepoListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_ = repo.Create(ctx, Resume{ID: id, UserID: "u", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	got, err := repo.ListByUser(ctx, "u", 2, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("unexpected order %+v", got)
	}
	if rest, _ := repo.ListByUser(ctx, "u", 2, 5); len(rest) != 0 {
		t.Fatalf("expected empty page past end, got %d", len(rest))
	}
}
