package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"projecthub/config"
)

func TestLocalStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "files")
	store, err := NewLocalStore(dir, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := store.Save(context.Background(), "doc.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "http://localhost:8080/files/doc.pdf" {
		t.Fatalf("unexpected url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "doc.pdf"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", data)
	}

	if _, err := store.Save(context.Background(), "doc.pdf", strings.NewReader("x"), 1, "text/plain"); err == nil {
		t.Fatalf("expected error when overwriting an existing file")
	}
}

func TestLocalStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Save(ctx, "a.pdf", strings.NewReader("%PDF"), 4, "application/pdf"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.pdf")); !os.IsNotExist(err) {
		t.Fatalf("file still present after delete: %v", err)
	}
	if err := store.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("deleting a missing file should succeed, got %v", err)
	}
	if err := store.Delete(ctx, "../a.pdf"); err == nil {
		t.Fatalf("expected error for path names")
	}
}

func TestLocalStoreRejectsPaths(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, name := range []string{"../escape.pdf", "a/b.pdf", ".."} {
		if _, err := store.Save(context.Background(), name, strings.NewReader("x"), 1, ""); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestFileName(t *testing.T) {
	a := FileName("Report.PDF")
	b := FileName("Report.PDF")
	if !strings.HasSuffix(a, ".pdf") {
		t.Fatalf("expected lower-cased extension, got %q", a)
	}
	if a == b {
		t.Fatalf("file names should be unique")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), config.UploadConfig{Backend: "ftp"}, ""); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
