package registry

import (
	"reflect"
	"sync"

	"github.com/aretw0/aplus/pkg/scene"
)

// Subject is an observable scene state of type S.
type Subject[S any] interface {
	Observe(scene.Observer[S])
	Unobserve(scene.Observer[S])
}

// Registry tracks at most one live instance per observable subject type, so that
// observers can attach without holding a reference to the subject.
// Observers registered before their subject exists are attached once it registers.
type Registry struct {
	mu       sync.RWMutex
	subjects map[reflect.Type]any
	deferred map[reflect.Type][]any
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subjects: make(map[reflect.Type]any),
		deferred: make(map[reflect.Type][]any),
	}
}

// Register makes subject the instance of S. It returns false, leaving the registry
// unchanged, when another instance of S is already registered.
func Register[S any](r *Registry, subject Subject[S]) bool {
	key := reflect.TypeFor[S]()

	r.mu.Lock()
	if _, ok := r.subjects[key]; ok {
		r.mu.Unlock()
		return false
	}
	r.subjects[key] = subject
	waiting := r.deferred[key]
	delete(r.deferred, key)
	r.mu.Unlock()

	for _, o := range waiting {
		subject.Observe(o.(scene.Observer[S]))
	}
	return true
}

// Unregister removes subject if it is the registered instance of S.
func Unregister[S any](r *Registry, subject Subject[S]) bool {
	key := reflect.TypeFor[S]()

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.subjects[key]
	if !ok || current != any(subject) {
		return false
	}
	delete(r.subjects, key)
	return true
}

// Lookup returns the registered instance of S.
func Lookup[S any](r *Registry) (Subject[S], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subjects[reflect.TypeFor[S]()]
	if !ok {
		return nil, false
	}
	return s.(Subject[S]), true
}

// Observe attaches o to the instance of S, or defers it until one registers.
func Observe[S any](r *Registry, o scene.Observer[S]) {
	key := reflect.TypeFor[S]()

	r.mu.Lock()
	s, ok := r.subjects[key]
	if !ok {
		r.deferred[key] = append(r.deferred[key], o)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	s.(Subject[S]).Observe(o)
}

// Unobserve detaches o from the instance of S, or drops it from the deferred list.
func Unobserve[S any](r *Registry, o scene.Observer[S]) {
	key := reflect.TypeFor[S]()

	r.mu.Lock()
	s, ok := r.subjects[key]
	if !ok {
		list := r.deferred[key]
		for i, d := range list {
			if d == any(o) {
				r.deferred[key] = append(list[:i], list[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	s.(Subject[S]).Unobserve(o)
}

// Clear forgets every subject and deferred observer.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.subjects)
	clear(r.deferred)
}
