package validate

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors collects per-field validation messages for a submission.
// It satisfies error so services can return it through the normal error path.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (f FieldErrors) Any() bool {
	return len(f) > 0
}

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(f[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
