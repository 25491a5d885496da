// Package filesystem stores uploaded plan documents under a local
// directory and issues HMAC-signed, expiring file:// URLs for them.
package filesystem

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Signed URL errors.
var (
	ErrInvalidSignature = errors.New("invalid url signature")
	ErrURLExpired       = errors.New("signed url expired")
)

// Store keeps blobs as files below root.
type Store struct {
	root string
	key  []byte
	now  func() time.Time
}

// New creates a store rooted at dir. If dir is empty, defaults to
// ~/.houseplan/blobs. An empty signingKey selects a random per-process
// key, so URLs issued by one process do not verify in another.
func New(dir, signingKey string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".houseplan", "blobs")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving blob directory: %w", err)
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	key := []byte(signingKey)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating signing key: %w", err)
		}
	}

	return &Store{root: root, key: key, now: time.Now}, nil
}

// Root returns the absolute storage directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes data to path, creating parent directories.
func (s *Store) Put(_ context.Context, p string, data []byte, _ string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return fmt.Errorf("%w: creating directory: %w", domain.ErrStorage, err)
	}
	if err := os.WriteFile(full, data, 0600); err != nil {
		return fmt.Errorf("%w: writing %s: %w", domain.ErrStorage, p, err)
	}
	return nil
}

// Get reads the blob at path.
func (s *Store) Get(_ context.Context, p string) ([]byte, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrStorage, p, err)
	}
	return data, nil
}

// SignedURL returns a file:// URL for path that Verify accepts until ttl elapses.
func (s *Store) SignedURL(_ context.Context, p string, ttl time.Duration) (string, error) {
	full, err := s.resolve(p)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, p)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)
	q := url.Values{}
	q.Set("path", p)
	q.Set("expires", expires)
	q.Set("sig", s.sign(p, expires))

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(full), RawQuery: q.Encode()}
	return u.String(), nil
}

// Verify checks a URL issued by SignedURL and returns the blob path it grants.
func (s *Store) Verify(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	q := u.Query()
	p, expires, sig := q.Get("path"), q.Get("expires"), q.Get("sig")

	want := s.sign(p, expires)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(want)) != 1 {
		return "", ErrInvalidSignature
	}
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return "", ErrInvalidSignature
	}
	if s.now().Unix() > unix {
		return "", ErrURLExpired
	}
	return p, nil
}

func (s *Store) sign(p, expires string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(p))
	mac.Write([]byte{0})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps a slash-separated blob path to a file below root.
func (s *Store) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if p == "" || clean == "/" || strings.Contains(p, "\\") || clean != "/"+strings.TrimPrefix(p, "/") {
		return "", fmt.Errorf("%w: invalid blob path %q", domain.ErrInvalidInput, p)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
