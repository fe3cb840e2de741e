// Package jobcode renders and validates the human-readable job codes
// printed on receipts, e.g. RT-2025-000004.
package jobcode

import (
	"fmt"
	"regexp"
)

// Width is the zero-padded sequence width.
const Width = 6

var pattern = regexp.MustCompile(`^[A-Z]+-\d{4}-\d{6}$`)

// Format renders a job code from a prefix, calendar year and sequence
// number. Sequence allocation itself happens inside the job insert
// transaction so two concurrent creates can never mint the same code.
func Format(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, Width, seq)
}

// Valid reports whether s looks like a job code. Used to cheaply reject
// junk on the public tracking route before touching the database.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
