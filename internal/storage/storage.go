// Package storage provides the sector-indexed key/value interface that
// the FAT12 engine persists through. It wraps an afero.Fs as a
// non-volatile store, so the same abstraction backs an in-memory disk
// image in tests, a plain OS directory for a real session, or (in
// principle) any other afero backend without internal/fat12 caring.
package storage

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotExist is returned by Get for an absent key. Callers that treat
// a blank backing store as equivalent to a freshly-formatted disk
// should not propagate this error; see internal/fat12's sector cache.
var ErrNotExist = errors.New("storage: key does not exist")

// Store is the persisted key/value contract internal/fat12 runs its
// sector cache over: sector-index keys, 512-byte values, base64-encoded
// on the wire when the backing store is text-only.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	List(prefix string) ([]string, error)
}

// AferoStore stores each value as a base64 text file under root, named
// by its key, keeping a stable external wire format independent of the
// in-memory representation — decoding happens once, at Get/Put, so
// every other package only ever sees raw bytes.
type AferoStore struct {
	fs   afero.Fs
	root string
}

// NewAferoStore returns a Store rooted at root within fs. root is
// created on first Put if it doesn't already exist.
func NewAferoStore(fs afero.Fs, root string) *AferoStore {
	return &AferoStore{fs: fs, root: root}
}

// NewMemStore returns a Store backed by an in-memory filesystem, for
// tests and for the headless/browser-style session that has no real
// disk to write to.
func NewMemStore(root string) *AferoStore {
	return NewAferoStore(afero.NewMemMapFs(), root)
}

func (s *AferoStore) path(key string) string {
	return path.Join(s.root, key+".b64")
}

func (s *AferoStore) Get(key string) ([]byte, error) {
	raw, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return base64.StdEncoding.DecodeString(string(raw))
}

func (s *AferoStore) Put(key string, value []byte) error {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	enc := base64.StdEncoding.EncodeToString(value)
	return afero.WriteFile(s.fs, s.path(key), []byte(enc), 0o644)
}

func (s *AferoStore) Delete(key string) error {
	err := s.fs.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *AferoStore) List(prefix string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".b64")
		if strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
