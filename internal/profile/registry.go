package profile

import (
	"fmt"
	"sort"
)

type Registry struct {
	generators map[string]func() Generator
}

func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]func() Generator)}

	r.generators["trapezoid"] = func() Generator { return NewTrapezoid() }
	r.generators["s_curve"] = func() Generator { return NewSCurve() }

	return r
}

// Register adds or replaces a generator factory.
func (r *Registry) Register(name string, fn func() Generator) {
	r.generators[name] = fn
}

func (r *Registry) Get(name string) (Generator, error) {
	fn, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return fn(), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
