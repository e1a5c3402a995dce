package models

import (
	"fmt"
	"sort"

	"github.com/oncodyn/tumorsim/internal/kinetics"
)

var variants = map[string]func(map[string]float64) *Variant{
	"linear1":       NewLinear1,
	"linear2":       NewLinear2,
	"linear3":       NewLinear3,
	"uniform":       NewUniform,
	"uniform-birth": NewUniformBirth,
	"uniform-death": NewUniformDeath,
}

// New builds a named model variant with parameter overrides applied.
func New(name string, overrides map[string]float64) (*Variant, error) {
	fn, ok := variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", kinetics.ErrUnknownVariant, name)
	}
	return fn(overrides), nil
}

// List returns the registered variant names, sorted.
func List() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
