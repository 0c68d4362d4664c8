package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInUse is returned when a row cannot be deleted while other rows reference it.
	ErrInUse = errors.New("row is referenced")
	// ErrUnknownColumn guards the partial-update builders against columns
	// outside a table's allow-list.
	ErrUnknownColumn = errors.New("unknown column")
)

// Assignment is one "column = value" pair of a partial UPDATE.
type Assignment struct {
	Column string
	Value  interface{}
}

// buildUpdate renders an UPDATE of the row with the given id. The id is $1,
// assignments follow in order and updated_at is always refreshed.
func buildUpdate(table string, allowed map[string]bool, id int64, set []Assignment, returning string) (string, []interface{}, error) {
	clauses := make([]string, 0, len(set)+1)
	args := make([]interface{}, 0, len(set)+1)
	args = append(args, id)

	for _, a := range set {
		if !allowed[a.Column] {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, a.Column)
		}
		args = append(args, a.Value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", a.Column, len(args)))
	}
	clauses = append(clauses, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		table, strings.Join(clauses, ", "), returning)
	return query, args, nil
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

func hasColumn(set []Assignment, column string) bool {
	for _, a := range set {
		if a.Column == column {
			return true
		}
	}
	return false
}
