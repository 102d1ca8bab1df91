package db

import (
	"fmt"
	"strings"
)

// Conditions accumulates AND-ed WHERE terms with positional arguments.
type Conditions struct {
	terms []string
	args  []any
}

// Add appends a term. expr holds a single %d which receives the argument
// position, e.g. "tuition <= $%d".
func (c *Conditions) Add(expr string, arg any) {
	c.args = append(c.args, arg)
	c.terms = append(c.terms, fmt.Sprintf(expr, len(c.args)))
}

// Where renders the WHERE clause, or an empty string when there are no terms.
func (c *Conditions) Where() string {
	if len(c.terms) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.terms, " AND ")
}

// Args returns the positional arguments in order.
func (c *Conditions) Args() []any {
	return append([]any(nil), c.args...)
}

// Next returns the position the next argument will take.
func (c *Conditions) Next() int {
	return len(c.args) + 1
}
