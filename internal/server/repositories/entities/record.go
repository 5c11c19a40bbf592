package entities

import (
	"time"

	"github.com/dmitrijs2005/capstone/internal/server/registry"
)

// Attrs holds field values keyed by column name.
type Attrs map[string]any

// Record is one loaded row. Values are already normalised to string, int64,
// bool, time.Time or nil, whatever the driver returned.
type Record struct {
	Entity *registry.Entity
	values map[string]any
}

func (r Record) Get(name string) any { return r.values[name] }

func (r Record) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

func (r Record) StringPtr(name string) *string {
	s, ok := r.values[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func (r Record) Int64(name string) int64 {
	n, _ := r.values[name].(int64)
	return n
}

func (r Record) Int64Ptr(name string) *int64 {
	n, ok := r.values[name].(int64)
	if !ok {
		return nil
	}
	return &n
}

func (r Record) Bool(name string) bool {
	b, _ := r.values[name].(bool)
	return b
}

func (r Record) Time(name string) time.Time {
	t, _ := r.values[name].(time.Time)
	return t
}

// Attrs returns a copy of the record's values.
func (r Record) Attrs() Attrs {
	out := make(Attrs, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
