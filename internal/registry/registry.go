// Package registry is the compile-time component registry: analysis and
// retrieval components register a constructor under a fixed name at
// package init time, rather than being discovered by a filesystem scan.
//
// Distinct from the teacher's own internal/registry, which routes
// tenant-scoped vector collections; this one resolves named analysis
// components.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

// Component is a named unit of analysis, run with a set of string
// parameters (typically at least "collection").
type Component interface {
	Run(ctx context.Context, params map[string]string) (string, error)
}

// Constructor builds a Component from the shared resources and the
// retrieval engine built over them — the two dependencies every analysis
// component is allowed to hold, per its own package doc.
type Constructor func(res *resources.Registry, engine *retrieval.Engine) (Component, error)

var (
	mu           sync.Mutex
	constructors = map[string]Constructor{}
)

// Register records a named component constructor. Called from each
// component package's init(); panics on a duplicate name since that
// indicates two packages claiming the same slot at compile time.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := constructors[name]; exists {
		panic(fmt.Sprintf("registry: component %q registered twice", name))
	}
	constructors[name] = ctor
}

// Names returns every registered component name.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	return names
}

// Registry resolves component names to cached instances, building each at
// most once.
type Registry struct {
	resources *resources.Registry
	engine    *retrieval.Engine

	instMu    sync.Mutex
	once      map[string]*sync.Once
	instances map[string]Component
	buildErrs map[string]error
}

// New builds a Registry over res and engine, used to construct components
// on demand.
func New(res *resources.Registry, engine *retrieval.Engine) *Registry {
	return &Registry{
		resources: res,
		engine:    engine,
		once:      make(map[string]*sync.Once),
		instances: make(map[string]Component),
		buildErrs: make(map[string]error),
	}
}

// Get resolves name to its cached Component instance, constructing it on
// first use. Concurrent callers resolving the same name block on a single
// construction; callers of distinct names do not contend.
func (r *Registry) Get(name string) (Component, error) {
	mu.Lock()
	ctor, ok := constructors[name]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("registry: no component registered as %q", name)
	}

	r.instMu.Lock()
	once, ok := r.once[name]
	if !ok {
		once = &sync.Once{}
		r.once[name] = once
	}
	r.instMu.Unlock()

	once.Do(func() {
		instance, err := ctor(r.resources, r.engine)
		r.instMu.Lock()
		r.instances[name] = instance
		r.buildErrs[name] = err
		r.instMu.Unlock()
	})

	r.instMu.Lock()
	defer r.instMu.Unlock()
	return r.instances[name], r.buildErrs[name]
}
