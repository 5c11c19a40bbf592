// Package entities implements whitelist-filtered CRUD over any entity in the
// registry. All statements run on the DBTX the repository is bound to,
// normally a *dbx.Tx.
package entities

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
)

type Repository struct {
	db  dbx.DBTX
	reg *registry.Registry
}

func NewRepository(db dbx.DBTX, reg *registry.Registry) *Repository {
	return &Repository{db: db, reg: reg}
}

// StorageErr wraps driver errors that did not come through a *dbx.Tx.
func StorageErr(op string, err error) error {
	if err == nil || errors.Is(err, common.ErrStorage) {
		return err
	}
	return common.NewStorageError(op, err)
}

func (r *Repository) key(entity string, id any) (*registry.Entity, any, error) {
	e, err := r.reg.Entity(entity)
	if err != nil {
		return nil, nil, err
	}
	v, err := e.PrimaryKey().Coerce(id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", entity, err)
	}
	return e, v, nil
}

// Exists reports whether a row with the given primary key is present.
func (r *Repository) Exists(ctx context.Context, entity string, id any) (bool, error) {
	e, key, err := r.key(entity, id)
	if err != nil {
		return false, err
	}
	return r.exists(ctx, e, key)
}

func (r *Repository) exists(ctx context.Context, e *registry.Entity, key any) (bool, error) {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = $1`, e.Table, e.PrimaryKey().Name)
	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return false, StorageErr("exists "+e.Name, err)
	}
	defer rows.Close()
	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, StorageErr("exists "+e.Name, err)
	}
	return found, nil
}

// Insert creates the row id unless one already exists, in which case nothing
// is written and false is returned. Whitelisted fields absent from attrs get
// their defaults; derived fields always start at their default. Attributes
// outside the insert whitelist are ignored.
//
// The existence check and the insert are separate statements. Two
// transactions racing on the same id are resolved by the primary key
// constraint, which surfaces as a storage error in the loser.
func (r *Repository) Insert(ctx context.Context, entity string, id any, attrs Attrs) (bool, error) {
	e, key, err := r.key(entity, id)
	if err != nil {
		return false, err
	}

	found, err := r.exists(ctx, e, key)
	if err != nil || found {
		return false, err
	}

	cols := []string{e.PrimaryKey().Name}
	args := []any{key}
	for _, f := range e.Fields {
		var v any
		switch f.Role {
		case registry.RolePrimaryKey:
			continue
		case registry.RoleDerived:
			v = f.Default
		default:
			raw, ok := attrs[f.Name]
			switch {
			case ok:
				if v, err = f.Coerce(raw); err != nil {
					return false, fmt.Errorf("insert %s: %w", entity, err)
				}
			case f.Required:
				return false, fmt.Errorf("insert %s: missing required field %s", entity, f.Name)
			default:
				v = f.Default
			}
		}
		cols = append(cols, f.Name)
		args = append(args, v)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		e.Table, strings.Join(cols, ", "), placeholders(1, len(cols)))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return false, StorageErr("insert "+entity, err)
	}
	return true, nil
}

// Alter applies the subset of changes that is in the alter whitelist. With
// nothing left to apply no statement is issued and false is returned.
// Otherwise the result reports whether exactly one row was updated, so an
// unknown id yields false rather than an error.
func (r *Repository) Alter(ctx context.Context, entity string, id any, changes Attrs) (bool, error) {
	e, key, err := r.key(entity, id)
	if err != nil {
		return false, err
	}

	accepted := make(map[string]any)
	for _, f := range e.AlterWhitelist() {
		raw, ok := changes[f.Name]
		if !ok {
			continue
		}
		v, err := f.Coerce(raw)
		if err != nil {
			return false, fmt.Errorf("alter %s: %w", entity, err)
		}
		accepted[f.Name] = v
	}
	if len(accepted) == 0 {
		return false, nil
	}
	return r.update(ctx, e, key, accepted)
}

// SetDerived writes a workflow-owned derived field such as users.is_utd.
func (r *Repository) SetDerived(ctx context.Context, entity string, id any, field string, value any) (bool, error) {
	e, key, err := r.key(entity, id)
	if err != nil {
		return false, err
	}
	f, ok := e.Field(field)
	if !ok || f.Role != registry.RoleDerived {
		return false, fmt.Errorf("set %s.%s: not a derived field", entity, field)
	}
	v, err := f.Coerce(value)
	if err != nil {
		return false, fmt.Errorf("set %s.%s: %w", entity, field, err)
	}
	return r.update(ctx, e, key, map[string]any{field: v})
}

func (r *Repository) update(ctx context.Context, e *registry.Entity, key any, values map[string]any) (bool, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		sets[i] = fmt.Sprintf("%s = $%d", name, i+1)
		args = append(args, values[name])
	}
	args = append(args, key)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d`,
		e.Table, strings.Join(sets, ", "), e.PrimaryKey().Name, len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, StorageErr("alter "+e.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, StorageErr("alter "+e.Name, err)
	}
	return n == 1, nil
}

// Load reads the row with the given primary key. No row is
// common.ErrorNotFound; more than one is common.ErrInvariantViolation.
func (r *Repository) Load(ctx context.Context, entity string, id any) (Record, error) {
	e, key, err := r.key(entity, id)
	if err != nil {
		return Record{}, err
	}

	cols := e.Columns()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(cols, ", "), e.Table, e.PrimaryKey().Name)
	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return Record{}, StorageErr("load "+entity, err)
	}
	defer rows.Close()

	var (
		rec Record
		n   int
	)
	for rows.Next() {
		n++
		if n > 1 {
			return Record{}, fmt.Errorf("load %s %v: %w", entity, key, common.ErrInvariantViolation)
		}
		if rec, err = scanRecord(e, rows); err != nil {
			return Record{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return Record{}, StorageErr("load "+entity, err)
	}
	if n == 0 {
		return Record{}, fmt.Errorf("load %s %v: %w", entity, key, common.ErrorNotFound)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(e *registry.Entity, s scanner) (Record, error) {
	raw := make([]any, len(e.Fields))
	ptrs := make([]any, len(e.Fields))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := s.Scan(ptrs...); err != nil {
		return Record{}, StorageErr("scan "+e.Name, err)
	}

	values := make(map[string]any, len(e.Fields))
	for i, f := range e.Fields {
		v, err := f.Normalize(raw[i])
		if err != nil {
			return Record{}, fmt.Errorf("scan %s: %w", e.Name, err)
		}
		values[f.Name] = v
	}
	return Record{Entity: e, values: values}, nil
}

// Delete removes one row. It reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, entity string, id any) (bool, error) {
	e, key, err := r.key(entity, id)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, e.Table, e.PrimaryKey().Name)
	res, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return false, StorageErr("delete "+entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, StorageErr("delete "+entity, err)
	}
	return n > 0, nil
}

// ClearAll empties every registered table. Back-references are nulled first,
// then tables are emptied children before parents.
func (r *Repository) ClearAll(ctx context.Context) error {
	for _, ref := range r.reg.BackReferences() {
		query := fmt.Sprintf(`UPDATE %s SET %s = NULL WHERE %s IS NOT NULL`, ref.Table, ref.Column, ref.Column)
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return StorageErr("clear "+ref.Table, err)
		}
	}
	for _, table := range r.reg.ClearOrder() {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return StorageErr("clear "+table, err)
		}
	}
	return nil
}

// NextID returns one more than the largest integer primary key in use.
func (r *Repository) NextID(ctx context.Context, entity string) (int64, error) {
	e, err := r.reg.Entity(entity)
	if err != nil {
		return 0, err
	}
	if e.PrimaryKey().Type != registry.TypeInt {
		return 0, fmt.Errorf("next id %s: primary key is not an integer", entity)
	}
	query := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s`, e.PrimaryKey().Name, e.Table)
	var id int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, StorageErr("next id "+entity, err)
	}
	return id, nil
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}
