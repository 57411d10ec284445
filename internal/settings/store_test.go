package settings

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetFallsBackWhenAbsent(t *testing.T) {
	store := openTestStore(t)
	if got := store.Get("console_port", "2121"); got != "2121" {
		t.Fatalf("Get = %q, want fallback", got)
	}
}

func TestSetAndGet(t *testing.T) {
	store := openTestStore(t)
	if err := store.Set("console_port", "2424"); err != nil {
		t.Fatal(err)
	}
	if got := store.Get("console_port", "2121"); got != "2424" {
		t.Fatalf("Get = %q, want 2424", got)
	}

	// Overwrite.
	if err := store.Set("console_port", "2525"); err != nil {
		t.Fatal(err)
	}
	if got := store.Get("console_port", ""); got != "2525" {
		t.Fatalf("Get after overwrite = %q, want 2525", got)
	}
}

func TestGetInt(t *testing.T) {
	store := openTestStore(t)
	if got := store.GetInt("tick_rate", 64); got != 64 {
		t.Fatalf("GetInt fallback = %d, want 64", got)
	}
	if err := store.Set("tick_rate", "128"); err != nil {
		t.Fatal(err)
	}
	if got := store.GetInt("tick_rate", 64); got != 128 {
		t.Fatalf("GetInt = %d, want 128", got)
	}
	if err := store.Set("tick_rate", "not-a-number"); err != nil {
		t.Fatal(err)
	}
	if got := store.GetInt("tick_rate", 64); got != 64 {
		t.Fatalf("GetInt with garbage = %d, want fallback", got)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	if got := store.Get("key", "fallback"); got != "fallback" {
		t.Fatalf("nil store Get = %q", got)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
}
