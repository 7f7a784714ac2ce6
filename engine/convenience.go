package engine

import (
	"context"

	"github.com/Konsultn-Engineering/pgquery/database"
	"github.com/Konsultn-Engineering/pgquery/params"
)

// GetOneField returns the first column of the single row matched by sql, or
// a null Value when no row matched. More than one row is a
// MultipleFieldsError.
func (q *Queryable) GetOneField(ctx context.Context, sql string, bag params.Bag, opts ...CallOption) (database.Value, error) {
	rows, err := q.Query(ctx, sql, bag, opts...)
	if err != nil {
		return database.Null(), err
	}
	if len(rows) > 1 {
		return database.Null(), &MultipleFieldsError{SQL: sql, Rows: len(rows)}
	}
	if len(rows) == 0 {
		return database.Null(), nil
	}
	_, v, _ := rows[0].First()
	return v, nil
}

// GetOneColumn returns, for every row, the value of the first row's first
// column. No rows yields an empty slice.
func (q *Queryable) GetOneColumn(ctx context.Context, sql string, bag params.Bag, opts ...CallOption) ([]database.Value, error) {
	rows, err := q.Query(ctx, sql, bag, opts...)
	if err != nil {
		return nil, err
	}

	values := make([]database.Value, 0, len(rows))
	if len(rows) == 0 {
		return values, nil
	}
	column, _, ok := rows[0].First()
	if !ok {
		return values, nil
	}
	for _, r := range rows {
		v, _ := r.Get(column)
		values = append(values, v)
	}
	return values, nil
}
