package tokensvc

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
)

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return token
}

func tempPath(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "tokenstore")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "token")
}

func TestFileStore_SaveAndReload(t *testing.T) {
	path := tempPath(t)
	token := signedToken(t, Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "1",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		Email: "employee@test.test",
		Role:  "EMPLOYEE",
	})

	store := NewFileStore(path)
	if err := store.Save(token); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if got := store.Token(); got != token {
		t.Errorf("Token() = %q, want the saved token", got)
	}

	// a fresh store picks the token up from disk
	reloaded := NewFileStore(path)
	if got := reloaded.Token(); got != token {
		t.Errorf("reloaded Token() = %q, want the saved token", got)
	}
	claims, err := reloaded.Claims()
	if err != nil {
		t.Fatalf("Claims() failed: %v", err)
	}
	if claims.Email != "employee@test.test" || claims.Role != "EMPLOYEE" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestFileStore_ExpiredTokenDropped(t *testing.T) {
	path := tempPath(t)
	expired := signedToken(t, Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	})

	store := NewFileStore(path)
	if err := store.Save(expired); err != nil {
		t.Fatal(err)
	}
	if got := store.Token(); got != "" {
		t.Errorf("Token() = %q, want empty for an expired token", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired token file should be removed")
	}
}

func TestFileStore_OpaqueTokenKept(t *testing.T) {
	// tokens the client cannot decode are passed through untouched
	store := NewFileStore(tempPath(t))
	if err := store.Save("tok-opaque"); err != nil {
		t.Fatal(err)
	}
	if got := store.Token(); got != "tok-opaque" {
		t.Errorf("Token() = %q, want the opaque token", got)
	}
}

func TestFileStore_Invalidate(t *testing.T) {
	path := tempPath(t)
	store := NewFileStore(path)
	if err := store.Save("tok-123"); err != nil {
		t.Fatal(err)
	}

	notified := false
	store.OnInvalidate(func() { notified = true })

	store.Invalidate()
	if got := store.Token(); got != "" {
		t.Errorf("Token() after Invalidate() = %q, want empty", got)
	}
	if !notified {
		t.Error("OnInvalidate callback not fired")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file should be removed on invalidation")
	}
}
