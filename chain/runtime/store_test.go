package runtime

import (
	"testing"

	"finova/chain/types"
)

func TestStorePutGet(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	id := types.BytesToPubkey([]byte("account"))
	if _, ok := store.Get("users", id); ok {
		t.Error("expected no value before any Put")
	}

	if err := store.Put("users", id, []byte("payload")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := store.Get("users", id)
	if !ok {
		t.Fatal("expected value after Put")
	}
	if string(got) != "payload" {
		t.Errorf("expected %q, got %q", "payload", got)
	}
	if !store.Has("users", id) {
		t.Error("expected Has to report true after Put")
	}
}

func TestStoreNamespacesAreIndependent(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	id := types.BytesToPubkey([]byte("account"))
	store.Put("users", id, []byte("a"))
	store.Put("snapshots", id, []byte("b"))

	gotUsers, _ := store.Get("users", id)
	gotSnapshots, _ := store.Get("snapshots", id)
	if string(gotUsers) != "a" || string(gotSnapshots) != "b" {
		t.Errorf("expected namespace isolation, got %q and %q", gotUsers, gotSnapshots)
	}
}
