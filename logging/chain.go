package logging

// Chain is an ordered list of optional loggers, most specific first
// (call, schema, database). Nil entries are skipped.
type Chain []Logger

// Resolve returns the first configured logger in c. When none is set it
// returns console if useConsole, otherwise fallback.
func (c Chain) Resolve(useConsole bool, console, fallback Logger) Logger {
	for _, l := range c {
		if l != nil {
			return l
		}
	}
	if useConsole {
		return console
	}
	return fallback
}
