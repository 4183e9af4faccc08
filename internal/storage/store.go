package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pixil98/go-errors"
)

type Storer[T ValidatingSpec] interface {
	Get(string) T
	GetAll() map[string]T
}

// FileStore holds every .json asset found under a directory tree, keyed by
// asset id. Assets may name sidecar files, such as scripts, relative to the
// store root.
type FileStore[T ValidatingSpec] struct {
	root    string
	records map[string]T

	mu sync.RWMutex
}

// NewFileStore loads path. Every broken asset is reported, not just the
// first one found.
func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	records, err := loadTree[T](path)
	if err != nil {
		return nil, err
	}
	return &FileStore[T]{root: path, records: records}, nil
}

func loadTree[T ValidatingSpec](root string) (map[string]T, error) {
	records := map[string]T{}
	sources := map[string]string{}
	el := errors.NewErrorList()

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		asset, err := readAsset[T](path)
		if err != nil {
			el.Add(fmt.Errorf("%s: %w", rel, err))
			return nil
		}

		key := asset.Id().String()
		if prev, ok := sources[key]; ok {
			el.Add(fmt.Errorf("%s: duplicate id %q, already loaded from %s", rel, key, prev))
			return nil
		}
		sources[key] = rel
		records[key] = asset.Spec
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}
	if err := el.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func readAsset[T ValidatingSpec](path string) (*Asset[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset: %w", err)
	}

	asset := &Asset[T]{}
	if err := json.Unmarshal(data, asset); err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}
	if err := asset.Validate(); err != nil {
		return nil, fmt.Errorf("validating asset: %w", err)
	}
	return asset, nil
}

// Get returns the record for id or the zero value.
func (s *FileStore[T]) Get(id string) T {
	val, _ := s.Lookup(id)
	return val
}

func (s *FileStore[T]) Lookup(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[id]
	return val, ok
}

// GetAll returns a copy of every record.
func (s *FileStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}

// ReadSidecar reads a file named by an asset. The name must stay inside
// the store root.
func (s *FileStore[T]) ReadSidecar(name string) ([]byte, error) {
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("sidecar %q escapes the asset directory", name)
	}
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		return nil, fmt.Errorf("reading sidecar %q: %w", name, err)
	}
	return data, nil
}
