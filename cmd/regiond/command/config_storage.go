package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-regions/internal/region"
	"github.com/pixil98/go-regions/internal/script"
	"github.com/pixil98/go-regions/internal/storage"
)

type StorageConfig struct {
	Maps          AssetConfig[*region.Map]         `json:"maps"`
	EntityClasses AssetConfig[*region.EntityClass] `json:"entity_classes"`
	ItemClasses   AssetConfig[*region.ItemClass]   `json:"item_classes"`
}

// Library is every asset loaded from disk, with class scripts compiled.
type Library struct {
	Maps          *storage.FileStore[*region.Map]
	EntityClasses *storage.FileStore[*region.EntityClass]
	ItemClasses   *storage.FileStore[*region.ItemClass]
	Programs      map[string]*script.Program
	ScriptErrors  []error
}

func (c *StorageConfig) BuildLibrary() (*Library, error) {
	maps, err := c.Maps.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating map store: %w", err)
	}
	entities, err := c.EntityClasses.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating entity class store: %w", err)
	}
	items, err := c.ItemClasses.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating item class store: %w", err)
	}

	programs, errs := region.CompilePrograms(entities, items)

	return &Library{
		Maps:          maps,
		EntityClasses: entities,
		ItemClasses:   items,
		Programs:      programs,
		ScriptErrors:  errs,
	}, nil
}

// Assets gathers what the named map needs to start.
func (l *Library) Assets(name string) (region.Assets, error) {
	m, ok := l.Maps.Lookup(name)
	if !ok {
		return region.Assets{}, fmt.Errorf("map %q not found", name)
	}
	return region.Assets{
		Map:           m,
		EntityClasses: l.EntityClasses,
		ItemClasses:   l.ItemClasses,
		Programs:      l.Programs,
		Errors:        l.ScriptErrors,
	}, nil
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Maps.Validate("maps"))
	el.Add(c.EntityClasses.Validate("entity_classes"))
	el.Add(c.ItemClasses.Validate("item_classes"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
