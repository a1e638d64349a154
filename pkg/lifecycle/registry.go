// Package lifecycle keeps at most one live instance per component kind.
//
// It models the singleton behaviour a host engine usually bakes into base
// classes as an explicit registry. The host drives it through two hooks:
// Awake when an instance comes to life and Quit (or Shutdown) when the
// application is tearing down. What happens to a duplicate on Awake is
// decided by the kind's Policy.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle state of one component kind.
type State int

const (
	StateUnset State = iota
	StateActive
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateActive:
		return "active"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Policy decides which instance survives when a second one awakes.
type Policy int

const (
	// PolicyReplace lets the latest awake instance take the slot. The
	// previous instance is left alive but no longer registered.
	PolicyReplace Policy = iota
	// PolicyKeepFirst keeps the registered instance and destroys newcomers.
	PolicyKeepFirst
	// PolicyKeepNewest destroys the older instance and keeps the one with
	// the later awake time. Ties keep the registered instance.
	PolicyKeepNewest
)

// Component is anything the registry can own. Instances are compared by
// identity, so implementations are normally pointers.
type Component interface {
	Destroy()
}

// Errors
var (
	ErrShuttingDown = errors.New("lifecycle: kind is shutting down")
	ErrNilComponent = errors.New("lifecycle: component is nil")
)

type slot struct {
	policy   Policy
	state    State
	instance Component
	awokeAt  time.Time
}

// Registry maps component kinds to their single live instance.
type Registry struct {
	mu    sync.Mutex
	slots map[string]*slot
	now   func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source used to stamp awake times.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		slots: make(map[string]*slot),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register sets the policy for kind. Kinds that are never registered use
// PolicyReplace. Changing the policy does not affect the current instance.
func (r *Registry) Register(kind string, policy Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slot(kind).policy = policy
}

func (r *Registry) slot(kind string) *slot {
	s, ok := r.slots[kind]
	if !ok {
		s = &slot{policy: PolicyReplace}
		r.slots[kind] = s
	}
	return s
}

// Awake registers c as an instance of kind and applies the kind's policy.
// It returns the instance that holds the slot afterwards. Once the kind is
// shutting down, c is destroyed and ErrShuttingDown is returned.
func (r *Registry) Awake(kind string, c Component) (Component, error) {
	if c == nil {
		return nil, ErrNilComponent
	}

	r.mu.Lock()
	s := r.slot(kind)
	now := r.now()

	var destroy Component
	switch {
	case s.state == StateShuttingDown:
		r.mu.Unlock()
		c.Destroy()
		return nil, ErrShuttingDown

	case s.instance == nil || s.instance == c:
		s.instance, s.awokeAt, s.state = c, now, StateActive

	case s.policy == PolicyKeepFirst:
		destroy = c

	case s.policy == PolicyKeepNewest:
		if s.awokeAt.Before(now) {
			destroy = s.instance
			s.instance, s.awokeAt = c, now
		} else {
			destroy = c
		}

	default:
		s.instance, s.awokeAt = c, now
	}
	kept := s.instance
	r.mu.Unlock()

	if destroy != nil {
		destroy.Destroy()
	}
	return kept, nil
}

// Instance returns the live instance of kind, creating one with factory
// when the slot is empty. It never creates once the kind is shutting down.
func (r *Registry) Instance(kind string, factory func() (Component, error)) (Component, error) {
	r.mu.Lock()
	s := r.slot(kind)
	switch {
	case s.state == StateShuttingDown:
		r.mu.Unlock()
		return nil, ErrShuttingDown
	case s.instance != nil:
		c := s.instance
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	c, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	return r.Awake(kind, c)
}

// TryGet returns the live instance of kind without creating one.
func (r *Registry) TryGet(kind string) (Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[kind]
	if !ok || s.instance == nil {
		return nil, false
	}
	return s.instance, true
}

// Has reports whether kind has a live instance.
func (r *Registry) Has(kind string) bool {
	_, ok := r.TryGet(kind)
	return ok
}

// State returns the lifecycle state of kind.
func (r *Registry) State(kind string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[kind]; ok {
		return s.state
	}
	return StateUnset
}

// Quit marks kind as shutting down, clears its slot and destroys the
// instance it held. Later Awake and Instance calls for kind are refused.
func (r *Registry) Quit(kind string) {
	r.mu.Lock()
	s := r.slot(kind)
	c := s.instance
	s.instance, s.state = nil, StateShuttingDown
	r.mu.Unlock()

	if c != nil {
		c.Destroy()
	}
}

// Shutdown quits every kind the registry knows about.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	kinds := make([]string, 0, len(r.slots))
	for kind := range r.slots {
		kinds = append(kinds, kind)
	}
	r.mu.Unlock()

	for _, kind := range kinds {
		r.Quit(kind)
	}
}

// Get is Instance with the result asserted to T.
func Get[T Component](r *Registry, kind string, factory func() (T, error)) (T, error) {
	var zero T
	c, err := r.Instance(kind, func() (Component, error) { return factory() })
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("lifecycle: %s holds %T", kind, c)
	}
	return t, nil
}
