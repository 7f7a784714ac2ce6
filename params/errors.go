package params

import (
	"fmt"
	"strings"
)

// MissingParameterError reports a placeholder without a matching key in the
// supplied mapping. It is raised before any connection is touched.
type MissingParameterError struct {
	// Placeholder as written in the query, e.g. ":id" or ":!table".
	Placeholder string
	Name        string
	Keys        []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("no %s in params (keys: %s)", e.Placeholder, strings.Join(e.Keys, ", "))
}
