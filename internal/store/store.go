// Package store is a flat-file JSON record store. Each record is one JSON
// document at <base>/<collection>/<id>.json; the (collection, id) pair is
// the only addressing scheme.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Collection names. Carts keeps the historical on-disk spelling so
// existing data directories stay readable.
const (
	Users  = "users"
	Tokens = "tokens"
	Orders = "orders"
	Carts  = "shopingCart"
)

var (
	ErrExists   = errors.New("record already exists")
	ErrNotFound = errors.New("record not found")
)

// Store persists one JSON document per record. Individual operations are
// safe to call concurrently; read-modify-write sequences are not atomic and
// must run inside Lock/Unlock for the record's key.
type Store struct {
	baseDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}

	return &Store{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// Lock takes the exclusive lock for one record. Callers doing a
// read-modify-write (e.g. appending to a user's order list) hold it across
// the whole sequence.
func (s *Store) Lock(collection, id string) {
	s.keyLock(collection, id).Lock()
}

func (s *Store) Unlock(collection, id string) {
	s.keyLock(collection, id).Unlock()
}

func (s *Store) keyLock(collection, id string) *sync.Mutex {
	key := collection + "/" + id

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Create writes a new record, failing with ErrExists if the id is already
// taken. The existence check and the write are a single O_EXCL open, so a
// losing racer never clobbers the winner.
func (s *Store) Create(collection, id string, doc any) error {
	path, err := s.path(collection, id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrExists
		}
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}

	if err := writeDoc(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}

	return f.Close()
}

// Read unmarshals the record into out.
func (s *Store) Read(collection, id string, out any) error {
	path, err := s.path(collection, id)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}

	return nil
}

// Update fully replaces an existing record (truncate-then-write, no merge).
// Fails with ErrNotFound if the record was never created.
func (s *Store) Update(collection, id string, doc any) error {
	path, err := s.path(collection, id)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("open %s/%s: %w", collection, id, err)
	}

	if err := writeDoc(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}

	return f.Close()
}

// Delete removes the record.
func (s *Store) Delete(collection, id string) error {
	path, err := s.path(collection, id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	return nil
}

// List returns the sorted ids of every record in the collection. A
// collection nothing was ever written to lists as empty.
func (s *Store) List(collection string) ([]string, error) {
	if err := validKey(collection); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.baseDir, collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	sort.Strings(ids)
	return ids, nil
}

func (s *Store) path(collection, id string) (string, error) {
	if err := validKey(collection); err != nil {
		return "", err
	}
	if err := validKey(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, collection, id+".json"), nil
}

// validKey keeps collection and id names inside their directory; record
// keys are emails and generated ids, neither of which may traverse paths.
func validKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, "/\\") {
		return fmt.Errorf("invalid store key %q", key)
	}
	return nil
}

func writeDoc(f *os.File, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	return err
}
