package deploy

import "strings"

// SplitStatements splits a SQL script into individual statements on the
// literal ';' separator, dropping empty and whitespace-only candidates.
//
// The split is deliberately naive: it has no awareness of string literals,
// comments, or stored-routine bodies that legitimately contain ';'. Scripts
// using such constructs will be mis-split. Operators rely on this exact
// behavior for their existing scripts, so it must not be "improved" to a
// real tokenizer without changing the documented contract.
func SplitStatements(script string) []string {
	parts := strings.Split(script, ";")

	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}

	return statements
}
