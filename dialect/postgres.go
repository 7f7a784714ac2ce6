package dialect

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

// QuoteIdentifier wraps name in double quotes, doubling any embedded quote.
func (p Postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the 1-based positional marker $n.
func (p Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// RenderValue renders v as a SQL literal. It is used for diagnostics only;
// statements are always sent with bound parameters.
func (Postgres) RenderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64)
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.000000") + "'"
	case []byte:
		return fmt.Sprintf("E'\\\\x%x'", val)
	case fmt.Stringer:
		return "'" + strings.ReplaceAll(val.String(), "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(val), "'", "''") + "'"
	}
}

// RenderArgs renders a bound-value sequence as "[v1, v2, ...]" for log records.
func RenderArgs(d Dialect, args []any) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.RenderValue(a))
	}
	sb.WriteByte(']')
	return sb.String()
}

// RenderNamed renders named parameters as "{a: v1, b: v2}" with keys sorted.
func RenderNamed(d Dialect, named map[string]any) string {
	var sb strings.Builder
	sb.WriteByte('{')
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(d.RenderValue(named[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}
