package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("writes file and returns public URL", func(t *testing.T) {
		root := t.TempDir()
		store := NewLocalStore(root, "http://localhost:8080/")

		url, err := store.Save(context.Background(), "cards/card-1/front.jpg", strings.NewReader("image-bytes"))
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if url != "http://localhost:8080/uploads/cards/card-1/front.jpg" {
			t.Fatalf("unexpected url %s", url)
		}

		data, err := os.ReadFile(filepath.Join(root, "cards", "card-1", "front.jpg"))
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(data) != "image-bytes" {
			t.Fatalf("unexpected contents %q", data)
		}
	})

	t.Run("overwrites an existing key", func(t *testing.T) {
		root := t.TempDir()
		store := NewLocalStore(root, "http://localhost:8080")

		for _, body := range []string{"v1", "v2"} {
			if _, err := store.Save(context.Background(), "cards/card-1/front.jpg", strings.NewReader(body)); err != nil {
				t.Fatalf("save %s: %v", body, err)
			}
		}

		data, err := os.ReadFile(filepath.Join(root, "cards", "card-1", "front.jpg"))
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(data) != "v2" {
			t.Fatalf("expected v2, got %q", data)
		}
	})

	t.Run("rejects keys escaping the root", func(t *testing.T) {
		store := NewLocalStore(t.TempDir(), "http://localhost:8080")

		for _, key := range []string{"../outside.jpg", "/etc/passwd", "a/../../b"} {
			if _, err := store.Save(context.Background(), key, strings.NewReader("x")); err == nil {
				t.Fatalf("expected error for key %q", key)
			}
		}
	})
}

func TestLocalStore_Delete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewLocalStore(root, "http://localhost:8080")

	if _, err := store.Save(context.Background(), "cards/card-1/front.jpg", strings.NewReader("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(context.Background(), "cards/card-1/front.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "cards", "card-1", "front.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}

	// Deleting a missing key succeeds.
	if err := store.Delete(context.Background(), "cards/card-1/front.jpg"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
