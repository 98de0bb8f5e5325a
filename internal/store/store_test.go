package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func testKVRoundTrip(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := kv.Get(ctx, "key")
	if err != nil || !ok || value != "value" {
		t.Fatalf("expected value, got %q ok=%v err=%v", value, ok, err)
	}

	// Empty values stay distinguishable from absent keys.
	if err := kv.Set(ctx, "empty", ""); err != nil {
		t.Fatalf("set empty: %v", err)
	}
	if _, ok, err := kv.Get(ctx, "empty"); err != nil || !ok {
		t.Fatalf("expected empty value to be present, got ok=%v err=%v", ok, err)
	}

	if err := kv.Remove(ctx, "key"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "key"); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	testKVRoundTrip(t, NewMemory())
}

func TestFileRoundTrip(t *testing.T) {
	kv, err := NewFile(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testKVRoundTrip(t, kv)
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	first, err := NewFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := first.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, ok, err := second.Get(ctx, "key")
	if err != nil || !ok || value != "value" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestFileTreatsEmptyFileAsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte(" \n"), 0o644); err != nil {
		t.Fatalf("writing store file: %v", err)
	}

	kv, err := NewFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, err := kv.Get(context.Background(), "any"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
}

func TestFileReportsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("writing store file: %v", err)
	}

	kv, err := NewFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := kv.Get(context.Background(), "any"); err == nil {
		t.Fatal("expected error for corrupt store file")
	}
}

func TestNewFileRequiresPath(t *testing.T) {
	if _, err := NewFile("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
