package store

import (
	"fmt"
	"strings"
)

type criteriaField struct {
	column string
	value  string
}

type placeholderFunc func(n int) string

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// criteriaWhere builds "col = ? AND ..." over the non-empty fields.
// The first field is mandatory and always included.
func criteriaWhere(ph placeholderFunc, fields []criteriaField) (string, []any) {
	clauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for i, f := range fields {
		if f.value == "" && i > 0 {
			continue
		}
		args = append(args, f.value)
		clauses = append(clauses, f.column+" = "+ph(len(args)))
	}
	return strings.Join(clauses, " AND "), args
}
