package params

import "sort"

// Bag holds the parameters of one statement: either an ordered sequence of
// positional values used verbatim, or a name to value mapping that has to be
// rewritten before execution. The zero Bag is an empty positional sequence.
type Bag struct {
	values []any
	named  map[string]any
}

// None is a Bag without parameters.
var None = Bag{}

// Positional returns a Bag whose values bind to $1, $2, ... in order.
func Positional(values ...any) Bag {
	return Bag{values: values}
}

// Named returns a Bag for a statement written with :name and :!name
// placeholders. A nil map is treated as an empty mapping.
func Named(m map[string]any) Bag {
	if m == nil {
		m = map[string]any{}
	}
	return Bag{named: m}
}

func (b Bag) IsNamed() bool { return b.named != nil }

// Values returns the positional values; nil for a named Bag.
func (b Bag) Values() []any { return b.values }

// Map returns the named values; nil for a positional Bag.
func (b Bag) Map() map[string]any { return b.named }

// Keys returns the sorted names of a named Bag.
func (b Bag) Keys() []string {
	return sortedKeys(b.named)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
