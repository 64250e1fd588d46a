package settings

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lotas/tabputz/internal/storage"
	"github.com/lotas/tabputz/internal/types"
	"github.com/lotas/tabputz/internal/watch"
)

// Store keeps options in the SQLite database and tells subscribers about
// writes, both from this process and from other tabputz processes sharing
// the same database file.
type Store struct {
	db        *sql.DB
	path      string
	namespace string

	mu        sync.Mutex
	listeners []func(namespace string)
}

// Open opens the database at path. namespace is the one reported for
// writes made by other processes.
func Open(path, namespace string) (*Store, error) {
	db, err := storage.OpenDB(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path, namespace: namespace}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Namespace is the namespace this store watches.
func (s *Store) Namespace() string {
	return s.namespace
}

func (s *Store) Get(ctx context.Context, namespace string, defaults map[string]bool) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return storage.GetSettings(s.db, namespace, defaults)
}

// Set writes one option and notifies subscribers.
func (s *Store) Set(ctx context.Context, namespace, key string, value bool) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(Keys, ", "))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.SetSetting(s.db, namespace, key, value); err != nil {
		return err
	}
	s.notify(namespace)
	return nil
}

// Toggle flips one option and returns its new value.
func (s *Store) Toggle(ctx context.Context, namespace, key string) (bool, error) {
	values, err := s.Get(ctx, namespace, Defaults())
	if err != nil {
		return false, err
	}
	v := !values[key]
	return v, s.Set(ctx, namespace, key, v)
}

// List returns the effective value of every option in namespace.
func (s *Store) List(ctx context.Context, namespace string) ([]storage.Setting, error) {
	values, err := s.Get(ctx, namespace, Defaults())
	if err != nil {
		return nil, err
	}
	out := make([]storage.Setting, 0, len(Keys))
	for _, k := range Keys {
		out = append(out, storage.Setting{Namespace: namespace, Key: k, Value: values[k]})
	}
	return out, nil
}

// OnChange registers fn to be called after every Set.
func (s *Store) OnChange(fn func(namespace string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(namespace string) {
	s.mu.Lock()
	fns := append([]func(string){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(namespace)
	}
}

// Run emits SettingsChanged for writes made through this store and for
// writes to the database files by other processes. It blocks until ctx is
// done.
func (s *Store) Run(ctx context.Context, emit func(types.Event)) error {
	s.OnChange(func(namespace string) {
		emit(types.SettingsChanged{Namespace: namespace})
	})

	base := filepath.Base(s.path)
	return watch.Dir(ctx, filepath.Dir(s.path), watch.DefaultQuiet, func(name string) bool {
		return strings.HasPrefix(name, base) && !strings.HasSuffix(name, "-shm")
	}, func() {
		emit(types.SettingsChanged{Namespace: s.namespace})
	})
}
