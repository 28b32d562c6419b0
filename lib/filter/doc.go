// Package filter decides whether a key is looked up at all.
//
// A Filter combines two optional checks:
//
//   - Domain list: only keys of the form local@domain with a non-empty local part and a
//     listed domain pass. Entries match case-insensitively, an entry starting with a dot
//     (".example.org") matches all subdomains and an entry starting with ! excludes the domain.
//     The first matching entry decides.
//
//   - Key pattern: a regular expression the whole key must match.
//
// A key that does not pass is answered with "not found" without contacting any node.
package filter
