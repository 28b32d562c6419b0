// Package expand formats lookup results with Postfix style result_format templates.
//
// A template is compiled once with New and then applied to every value of a reply.
// The following expansions are supported:
//
//	%%      a literal %
//	%s      the whole value
//	%u      the local part of the value (the whole value if it has no @)
//	%d      the domain part of the value
//	%S      the whole lookup key
//	%U      the local part of the lookup key
//	%D      the domain part of the lookup key
//	%1..%9  the n-th domain label of the lookup key, counted from the right (%1 is the top level domain)
//
// A value is skipped when the template needs a part that the value (or the key) does not have,
// e.g. %d for a value without domain. Empty values are always skipped.
// Expanded values are separated by a comma.
//
// Usage Example:
//
//	e, err := expand.New("%u@mail.%d")
//	var result strings.Builder
//	e.Expand(&result, "alice@example.org", "info@example.org")
//	e.Expand(&result, "bob@example.org", "info@example.org")
//	// result.String() == "alice@mail.example.org,bob@mail.example.org"
package expand
