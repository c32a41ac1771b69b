package vault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *Vault {
	t.Helper()
	dir := t.TempDir()
	v, err := Open(filepath.Join(dir, "test.db"), filepath.Join(dir, "test.key"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestPutGetRoundtrip(t *testing.T) {
	v := tempVault(t)

	want := []byte(`{"hello": "world"}`)
	if err := v.Put("test/record", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := v.Get("test/record")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("roundtrip mismatch: got %q, want %q", got, want)
	}
}

func TestPutOverwritesMutable(t *testing.T) {
	v := tempVault(t)

	if err := v.Put("k", []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Put("k", []byte("second")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err := v.Get("k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected second, got %q", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	v := tempVault(t)

	_, err := v.Get("absent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutOnceRejectsSecondWrite(t *testing.T) {
	v := tempVault(t)

	if err := v.PutOnce("log/entry-1", []byte("original")); err != nil {
		t.Fatalf("PutOnce: %v", err)
	}
	err := v.PutOnce("log/entry-1", []byte("tampered"))
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, err := v.Get("log/entry-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("immutable record changed: %q", got)
	}
}

func TestPutCannotTouchImmutableRecord(t *testing.T) {
	v := tempVault(t)

	if err := v.PutOnce("log/entry-1", []byte("original")); err != nil {
		t.Fatalf("PutOnce: %v", err)
	}
	// Put on an immutable key is a silent no-op at the SQL level.
	if err := v.Put("log/entry-1", []byte("tampered")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := v.Get("log/entry-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("immutable record changed through Put: %q", got)
	}
}

func TestKeysPrefixOrdered(t *testing.T) {
	v := tempVault(t)

	for _, k := range []string{"log/c", "log/a", "other/x", "log/b"} {
		if err := v.Put(k, []byte("v")); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	keys, err := v.Keys("log/")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"log/a", "log/b", "log/c"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key %d: got %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestValuesEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	v, err := Open(dbPath, filepath.Join(dir, "test.key"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	secret := []byte("extremely-recognizable-plaintext-marker")
	if err := v.Put("secret", secret); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, p := range []string{dbPath, dbPath + "-wal"} {
		raw, err := os.ReadFile(p)
		if err != nil {
			continue // wal file may be gone after checkpoint
		}
		if bytes.Contains(raw, secret) {
			t.Fatalf("plaintext leaked into %s", p)
		}
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	keyPath := filepath.Join(dir, "test.key")

	v1, err := Open(dbPath, keyPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := v1.Put("k", []byte("survives")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v1.Close()

	v2, err := Open(dbPath, keyPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer v2.Close()

	got, err := v2.Get("k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "survives" {
		t.Fatalf("got %q", got)
	}
}

func TestSealOpenRoundtrip(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	plain := []byte("the quick brown fox")

	sealed, err := seal(key, plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatal("sealed record contains plaintext")
	}

	out, err := open(key, sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatalf("roundtrip mismatch: %q", out)
	}

	// Distinct nonces make identical plaintexts seal differently.
	sealed2, err := seal(key, plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(sealed, sealed2) {
		t.Fatal("two seals of the same plaintext should differ")
	}
}

func TestOpenRejectsShortRecord(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	if _, err := open(key, []byte("short")); err == nil {
		t.Fatal("expected error for truncated record")
	}
}

func TestKeyFileCreatedWithTightPermissions(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "test.key")
	v, err := Open(filepath.Join(dir, "test.db"), keyPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v.Close()

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("key file mode: got %o, want 0600", info.Mode().Perm())
	}
}
