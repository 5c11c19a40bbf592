// Package registry is the static table of logical entities: which table
// each lives in, its primary key, and which fields callers may set on
// insert or change on update. Descriptors are validated when registered,
// so the generic CRUD code can trust them at call time.
package registry

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/dmitrijs2005/capstone/internal/common"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Entity is one registered logical entity.
type Entity struct {
	Name   string
	Table  string
	Fields []Field

	pk     int
	byName map[string]int
	index  int
}

func (e *Entity) PrimaryKey() Field { return e.Fields[e.pk] }

func (e *Entity) Field(name string) (Field, bool) {
	i, ok := e.byName[name]
	if !ok {
		return Field{}, false
	}
	return e.Fields[i], true
}

// Columns lists every column in declaration order.
func (e *Entity) Columns() []string {
	cols := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		cols[i] = f.Name
	}
	return cols
}

// InsertWhitelist lists the fields a caller may supply on insert.
func (e *Entity) InsertWhitelist() []Field {
	var out []Field
	for _, f := range e.Fields {
		if f.Role == RoleRegular {
			out = append(out, f)
		}
	}
	return out
}

// AlterWhitelist lists the fields a caller may change with a partial update.
func (e *Entity) AlterWhitelist() []Field {
	var out []Field
	for _, f := range e.Fields {
		if f.Role == RoleRegular && f.Alterable {
			out = append(out, f)
		}
	}
	return out
}

// AuxTable is a table outside generic CRUD (sets, ranked choices) that
// still has to be cleared before its parents.
type AuxTable struct {
	Table   string
	Parents []string
}

// BackRef is a nullable column pointing at an entity registered later. Such
// columns are the only way the schema can contain reference cycles.
type BackRef struct {
	Table  string
	Column string
}

type Registry struct {
	entities map[string]*Entity
	order    []*Entity
	aux      []AuxTable
}

func New() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// Register validates e and adds it. Entities must be registered parents
// first; a reference to a later entity is allowed only on a nullable field.
func (r *Registry) Register(e Entity) error {
	if e.Name == "" {
		return fmt.Errorf("register: empty entity name")
	}
	if _, dup := r.entities[e.Name]; dup {
		return fmt.Errorf("register %s: already registered", e.Name)
	}
	if !identRe.MatchString(e.Table) {
		return fmt.Errorf("register %s: bad table name %q", e.Name, e.Table)
	}

	e.byName = make(map[string]int, len(e.Fields))
	e.pk = -1
	for i, f := range e.Fields {
		if !identRe.MatchString(f.Name) {
			return fmt.Errorf("register %s: bad field name %q", e.Name, f.Name)
		}
		if _, dup := e.byName[f.Name]; dup {
			return fmt.Errorf("register %s: duplicate field %s", e.Name, f.Name)
		}
		e.byName[f.Name] = i

		if err := r.checkField(e.Name, &e.Fields[i]); err != nil {
			return err
		}
		if f.Role == RolePrimaryKey {
			if e.pk >= 0 {
				return fmt.Errorf("register %s: more than one primary key", e.Name)
			}
			e.pk = i
		}
	}
	if e.pk < 0 {
		return fmt.Errorf("register %s: no primary key", e.Name)
	}

	e.index = len(r.order)
	ent := e
	r.entities[e.Name] = &ent
	r.order = append(r.order, &ent)
	return nil
}

func (r *Registry) checkField(entity string, f *Field) error {
	switch f.Role {
	case RolePrimaryKey:
		if f.Nullable || f.Default != nil || f.Alterable {
			return fmt.Errorf("register %s: primary key %s must be non-nullable, without default, not alterable", entity, f.Name)
		}
	case RoleDerived:
		if f.Alterable || f.Required {
			return fmt.Errorf("register %s: derived field %s cannot be alterable or required", entity, f.Name)
		}
	}

	if f.Required && f.Default != nil {
		return fmt.Errorf("register %s: required field %s cannot have a default", entity, f.Name)
	}

	if f.Role != RolePrimaryKey && !f.Required {
		if f.Default == nil && !f.Nullable {
			return fmt.Errorf("register %s: field %s needs a default", entity, f.Name)
		}
		if f.Default != nil {
			v, err := f.Coerce(f.Default)
			if err != nil {
				return fmt.Errorf("register %s: default: %w", entity, err)
			}
			f.Default = v
		}
	}

	if f.Ref != "" {
		if _, ok := r.entities[f.Ref]; !ok && !f.Nullable {
			return fmt.Errorf("register %s: field %s references unregistered %s", entity, f.Name, f.Ref)
		}
	}
	return nil
}

// RegisterAux adds an auxiliary table whose rows belong to the given parent
// entities.
func (r *Registry) RegisterAux(table string, parents ...string) error {
	if !identRe.MatchString(table) {
		return fmt.Errorf("register aux: bad table name %q", table)
	}
	for _, p := range parents {
		if _, ok := r.entities[p]; !ok {
			return fmt.Errorf("register aux %s: unknown parent %s", table, p)
		}
	}
	r.aux = append(r.aux, AuxTable{Table: table, Parents: parents})
	return nil
}

// Check verifies that every reference, including back-references declared
// before their target existed, resolves to a registered entity.
func (r *Registry) Check() error {
	for _, e := range r.order {
		for _, f := range e.Fields {
			if f.Ref == "" {
				continue
			}
			if _, ok := r.entities[f.Ref]; !ok {
				return fmt.Errorf("%s.%s references unknown entity %s", e.Name, f.Name, f.Ref)
			}
		}
	}
	return nil
}

func (r *Registry) Entity(name string) (*Entity, error) {
	e, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, common.ErrUnknownEntity)
	}
	return e, nil
}

// Entities returns entities in registration (parent first) order.
func (r *Registry) Entities() []*Entity {
	return slices.Clone(r.order)
}

// BackReferences lists the columns to null out before deleting rows, so
// that deleting children before parents never hits a cycle.
func (r *Registry) BackReferences() []BackRef {
	var refs []BackRef
	for _, e := range r.order {
		for _, f := range e.Fields {
			if f.Ref == "" {
				continue
			}
			target := r.entities[f.Ref]
			if target != nil && target.index > e.index {
				refs = append(refs, BackRef{Table: e.Table, Column: f.Name})
			}
		}
	}
	return refs
}

// ClearOrder lists every table, children before parents: auxiliary tables
// first, then entities in reverse registration order.
func (r *Registry) ClearOrder() []string {
	tables := make([]string, 0, len(r.aux)+len(r.order))
	for i := len(r.aux) - 1; i >= 0; i-- {
		tables = append(tables, r.aux[i].Table)
	}
	for i := len(r.order) - 1; i >= 0; i-- {
		tables = append(tables, r.order[i].Table)
	}
	return tables
}
