package auth

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	creds := Credentials{AccessToken: "access", RefreshToken: "refresh"}
	if err := store.Save(creds); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded != creds {
		t.Errorf("loaded %+v, want %+v", loaded, creds)
	}
}

func TestStore_LoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	if err := NewStore(dir).Save(Credentials{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Fresh store instance must read the file, not the in-memory copy.
	loaded, err := NewStore(dir).Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.AccessToken != "a" || loaded.RefreshToken != "r" {
		t.Errorf("unexpected credentials: %+v", loaded)
	}
}

func TestStore_NotAuthenticated(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.Load(); err != ErrNotAuthenticated {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if store.Authenticated() {
		t.Error("empty store should not report authenticated")
	}
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Save(Credentials{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := store.Load(); err != ErrNotAuthenticated {
		t.Errorf("expected ErrNotAuthenticated after clear, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, credentialsFile)); !os.IsNotExist(err) {
		t.Error("credentials file should be removed")
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Clear(); err != nil {
		t.Errorf("clearing an empty store should not fail: %v", err)
	}
}

func TestStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.Save(Credentials{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, credentialsFile))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials file has mode %o, want 600", perm)
	}
}

// fakeJWT builds an unsigned JWT with the given claims payload.
func fakeJWT(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".sig"
}

func TestStore_Inspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := fakeJWT(t, map[string]interface{}{
		"_id":      "user-1",
		"username": "chaiwala",
		"email":    "chai@example.com",
		"exp":      exp,
	})

	store := NewStore(t.TempDir())
	if err := store.Save(Credentials{AccessToken: token, RefreshToken: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	id, err := store.Inspect()
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if id.UserID != "user-1" {
		t.Errorf("wrong user id: %s", id.UserID)
	}
	if id.Username != "chaiwala" {
		t.Errorf("wrong username: %s", id.Username)
	}
	if id.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
	if !id.Expired(time.Unix(exp, 0).Add(time.Minute)) {
		t.Error("token should be expired after its exp claim")
	}
}

func TestStore_InspectNotAuthenticated(t *testing.T) {
	if _, err := NewStore(t.TempDir()).Inspect(); err != ErrNotAuthenticated {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestStore_InspectMalformedToken(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save(Credentials{AccessToken: "not-a-jwt", RefreshToken: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := store.Inspect(); err == nil {
		t.Error("expected error for malformed token")
	}
}
