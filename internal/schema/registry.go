package schema

import (
	"fmt"
	"sync"

	"daily-checkin/internal/entry"

	"github.com/go-playground/validator/v10"
)

// Registry maps form types to schemas. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[entry.FormType]*Schema
	v       *validator.Validate
}

func NewRegistry(schemas ...Schema) *Registry {
	r := &Registry{schemas: map[entry.FormType]*Schema{}, v: validator.New()}
	for _, s := range schemas {
		r.Register(s)
	}
	return r
}

// Default holds the four built-in check-in forms.
func Default() *Registry {
	return NewRegistry(PainSchema, SleepSchema, StressSchema, HabitSchema)
}

// Register adds or replaces the schema for s.Type.
func (r *Registry) Register(s Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := s
	r.schemas[s.Type] = &cp
}

func (r *Registry) Lookup(t entry.FormType) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[t]
	return s, ok
}

// Validate checks p against the schema for t and returns the normalised
// payload. Schema failures are *ValidationError.
func (r *Registry) Validate(t entry.FormType, p Payload) (Payload, error) {
	s, ok := r.Lookup(t)
	if !ok {
		return nil, fmt.Errorf("no schema registered for %q", t)
	}
	if p == nil {
		p = Payload{}
	}
	return s.Validate(r.v, p)
}
