package dialect

// Dialect renders the database-specific pieces of a statement.
type Dialect interface {
	QuoteIdentifier(name string) string
	Placeholder(n int) string
	RenderValue(v any) string
}
