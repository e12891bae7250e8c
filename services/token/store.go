package tokensvc

import (
	"io/ioutil"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Claims is the subset of the backend's JWT payload the client cares about.
// The token is decoded without verification: the signing key never leaves the
// server, and a forged token only locks the forger out at the first request.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// FileStore persists the bearer token between runs and hands it to the HTTP
// client. A 401 from the backend lands here as Invalidate.
type FileStore struct {
	mu    sync.Mutex
	path  string
	token string

	// onInvalidate is notified after a token is dropped, e.g. to re-prompt login.
	onInvalidate func()
}

func NewFileStore(path string) *FileStore {
	store := &FileStore{path: path}
	if data, err := ioutil.ReadFile(path); err == nil {
		store.token = strings.TrimSpace(string(data))
	}
	return store
}

// OnInvalidate registers a callback fired after the token is dropped.
func (s *FileStore) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = fn
}

// Save stores the token in memory and on disk.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if err := ioutil.WriteFile(s.path, []byte(token), 0600); err != nil {
		return errors.Wrap(err, "persisting token")
	}
	return nil
}

// Token returns the current bearer token, or "" when logged out or expired.
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return ""
	}
	if claims, err := decodeClaims(s.token); err == nil && claims.ExpiresAt > 0 {
		if time.Now().Unix() >= claims.ExpiresAt {
			// expired locally; drop it instead of collecting a guaranteed 401
			s.dropLocked()
			return ""
		}
	}
	return s.token
}

// Claims decodes the stored token's payload, if any.
func (s *FileStore) Claims() (*Claims, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return nil, errors.New("no token stored")
	}
	return decodeClaims(token)
}

// Invalidate drops the token; called by the HTTP client on a 401 response.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	fn := s.onInvalidate
	s.dropLocked()
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *FileStore) dropLocked() {
	s.token = ""
	_ = os.Remove(s.path)
}

func decodeClaims(token string) (*Claims, error) {
	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "decoding token claims")
	}
	return claims, nil
}
