package region

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pixil98/go-regions/internal/script"
	"github.com/pixil98/go-regions/internal/storage"
)

// ClassSet is an in-memory Storer, used for tests and for class tables
// assembled outside a FileStore.
type ClassSet[T storage.ValidatingSpec] map[string]T

func (s ClassSet[T]) Get(id string) T      { return s[id] }
func (s ClassSet[T]) GetAll() map[string]T { return maps.Clone(s) }

// Assets is everything a region needs to start.
type Assets struct {
	Map           *Map
	EntityClasses storage.Storer[*EntityClass]
	ItemClasses   storage.Storer[*ItemClass]
	// Programs are keyed by class name.
	Programs map[string]*script.Program
	// Errors found while loading, reported when the region starts.
	Errors []error
}

// ScriptStore is a class store that can also read the script files its
// classes name.
type ScriptStore[T storage.ValidatingSpec] interface {
	storage.Storer[T]
	ReadSidecar(name string) ([]byte, error)
}

// CompilePrograms compiles the script of every class once. Classes whose
// script fails are reported and left without a program. Entity and item
// classes share one namespace; an item class shadows an entity class of
// the same name.
func CompilePrograms(entities ScriptStore[*EntityClass], items ScriptStore[*ItemClass]) (map[string]*script.Program, []error) {
	programs := map[string]*script.Program{}
	var errs []error

	compile := func(kind, name, path string, src func(string) ([]byte, error)) {
		if path == "" {
			return
		}
		source, err := src(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s class %q: %w", kind, name, err))
			return
		}
		p, err := script.Compile(name, string(source))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s class %q: %w", kind, name, err))
			return
		}
		programs[name] = p
	}

	ents := entities.GetAll()
	for _, id := range slices.Sorted(maps.Keys(ents)) {
		c := ents[id]
		compile("entity", c.Name, c.Script, entities.ReadSidecar)
	}
	its := items.GetAll()
	for _, id := range slices.Sorted(maps.Keys(its)) {
		c := its[id]
		compile("item", c.Name, c.Script, items.ReadSidecar)
	}
	return programs, errs
}
