package entities

import (
	"context"
)

// QueryInt64s runs a single-column query and collects the results in order.
func (r *Repository) QueryInt64s(ctx context.Context, op, query string, args ...any) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, StorageErr(op, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, StorageErr(op, err)
		}
		ids = append(ids, id)
	}
	return ids, StorageErr(op, rows.Err())
}

// QueryStrings is QueryInt64s for text columns.
func (r *Repository) QueryStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, StorageErr(op, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, StorageErr(op, err)
		}
		out = append(out, s)
	}
	return out, StorageErr(op, rows.Err())
}

// Exec runs a statement outside the registry, such as writes to auxiliary
// tables.
func (r *Repository) Exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, StorageErr(op, err)
	}
	n, err := res.RowsAffected()
	return n, StorageErr(op, err)
}

// ReplaceSet rewrites the string set stored in an auxiliary two-column
// table for one owner.
func (r *Repository) ReplaceSet(ctx context.Context, table, ownerCol, valueCol string, owner any, values []string) error {
	op := "set " + table
	if _, err := r.Exec(ctx, op, `DELETE FROM `+table+` WHERE `+ownerCol+` = $1`, owner); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, err := r.Exec(ctx, op, `INSERT INTO `+table+` (`+ownerCol+`, `+valueCol+`) VALUES ($1, $2)`, owner, v); err != nil {
			return err
		}
	}
	return nil
}

// Set reads the string set stored for one owner, sorted.
func (r *Repository) Set(ctx context.Context, table, ownerCol, valueCol string, owner any) ([]string, error) {
	return r.QueryStrings(ctx, "get "+table,
		`SELECT `+valueCol+` FROM `+table+` WHERE `+ownerCol+` = $1 ORDER BY `+valueCol, owner)
}
