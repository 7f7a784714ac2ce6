package query

import (
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/pgquery/dialect"
	"github.com/Konsultn-Engineering/pgquery/logging"
)

// Options describes optional trailing clauses of a select. OrderBy and
// GroupBy are free text and are not validated; callers must not pass
// untrusted input.
type Options struct {
	Limit   int
	OrderBy string
	GroupBy string
	Fields  []string
	Logger  logging.Logger
}

// Clause renders, in fixed order, "GROUP BY ...", "ORDER BY ..." and
// "LIMIT n", each followed by a space. Absent parts are skipped; the result
// may be empty.
func (o Options) Clause() string {
	var sb strings.Builder
	if o.GroupBy != "" {
		sb.WriteString("GROUP BY ")
		sb.WriteString(o.GroupBy)
		sb.WriteByte(' ')
	}
	if o.OrderBy != "" {
		sb.WriteString("ORDER BY ")
		sb.WriteString(o.OrderBy)
		sb.WriteByte(' ')
	}
	if o.Limit > 0 {
		sb.WriteString("LIMIT ")
		sb.WriteString(strconv.Itoa(o.Limit))
		sb.WriteByte(' ')
	}
	return sb.String()
}

// BuildClause is Clause for an optional descriptor.
func BuildClause(o *Options) string {
	if o == nil {
		return ""
	}
	return o.Clause()
}

// FieldList renders Fields as a comma separated list of quoted identifiers,
// or "*" when no fields are set.
func (o Options) FieldList(d dialect.Dialect) string {
	if len(o.Fields) == 0 {
		return "*"
	}
	quoted := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		quoted[i] = d.QuoteIdentifier(f)
	}
	return strings.Join(quoted, ", ")
}
