package storage

import (
	"bytes"
	"testing"
)

func TestFileRoundTrip(t *testing.T) {
	store, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	runStoreTests(t, store)
}

func TestMemoryRoundTrip(t *testing.T) {
	runStoreTests(t, NewMemory())
}

func runStoreTests(t *testing.T, store Store) {
	t.Helper()

	if _, ok, _ := store.Get("missing"); ok {
		t.Error("Get on missing key reported existence")
	}

	value := []byte("snapshot-bytes")
	if err := store.Set("db", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := store.Get("db")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get = %q, want %q", got, value)
	}

	// Overwrite replaces the previous value.
	if err := store.Set("db", []byte("v2")); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}
	got, _, _ = store.Get("db")
	if string(got) != "v2" {
		t.Errorf("after overwrite, Get = %q, want %q", got, "v2")
	}

	if err := store.Delete("db"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get("db"); ok {
		t.Error("key still exists after Delete")
	}

	// Deleting a missing key is not an error.
	if err := store.Delete("db"); err != nil {
		t.Errorf("Delete on missing key returned error: %v", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	store := NewMemory()
	value := []byte("original")
	store.Set("k", value)
	value[0] = 'X'

	got, _, _ := store.Get("k")
	if string(got) != "original" {
		t.Errorf("stored value was mutated externally: %q", got)
	}
}
