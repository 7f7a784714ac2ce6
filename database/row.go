package database

// Row is one result record: column names in result order, each with a
// Value. Column order is significant for First.
type Row struct {
	columns []string
	values  []Value
}

// NewRow pairs columns with raw driver values. columns may be shared between
// rows of the same result and must not be modified afterwards.
func NewRow(columns []string, raw []any) Row {
	values := make([]Value, len(columns))
	for i := range columns {
		if i < len(raw) {
			values[i] = NewValue(raw[i])
		}
	}
	return Row{columns: columns, values: values}
}

func (r Row) Columns() []string { return r.columns }
func (r Row) Len() int          { return len(r.columns) }
func (r Row) At(i int) Value    { return r.values[i] }

// Get returns the value of the first column named name.
func (r Row) Get(name string) (Value, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return Null(), false
}

// First returns the first column and its value.
func (r Row) First() (string, Value, bool) {
	if len(r.columns) == 0 {
		return "", Null(), false
	}
	return r.columns[0], r.values[0], true
}

// Map returns the row as a plain map. Duplicate column names keep the last
// value, as with most drivers.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i].Interface()
	}
	return m
}
