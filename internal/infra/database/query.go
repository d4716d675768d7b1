package database

import (
	"fmt"
	"strings"
)

// whereClause accumulates AND-ed conditions with positional arguments.
// A "?" in a condition becomes the $n of the argument added with it.
type whereClause struct {
	conds []string
	args  []any
}

// leadScope is the starting point of every lead read: deleted leads never match.
func leadScope() *whereClause {
	return &whereClause{conds: []string{"l.is_deleted = false"}}
}

func (w *whereClause) and(cond string, arg any) *whereClause {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
	return w
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
