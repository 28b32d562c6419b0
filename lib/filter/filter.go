package filter

import (
	"fmt"
	"regexp"
	"strings"
)

type domainEntry struct {
	name    string
	suffix  bool
	negated bool
}

// Filter is the key classifier of one map. The zero value accepts every key.
type Filter struct {
	domains []domainEntry
	pattern *regexp.Regexp
}

// New creates a filter from a domain list (separated by spaces or commas)
// and a key pattern. Empty arguments disable the respective check.
func New(domains, keyPattern string) (*Filter, error) {
	f := &Filter{}

	for _, d := range strings.FieldsFunc(domains, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\r' || r == '\n'
	}) {
		entry := domainEntry{}
		if strings.HasPrefix(d, "!") {
			entry.negated = true
			d = d[1:]
		}
		if strings.HasPrefix(d, ".") {
			entry.suffix = true
		}
		entry.name = strings.ToLower(d)
		if entry.name == "" || entry.name == "." {
			return nil, fmt.Errorf("invalid domain list entry %q", d)
		}
		if strings.ContainsAny(entry.name, ":/") {
			return nil, fmt.Errorf("domain tables are not supported: %q", d)
		}
		f.domains = append(f.domains, entry)
	}

	if keyPattern != "" {
		re, err := regexp.Compile(keyPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid key pattern %q: %w", keyPattern, err)
		}
		f.pattern = re
	}

	return f, nil
}

// HasDomains reports whether a domain list is configured
func (f *Filter) HasDomains() bool {
	return len(f.domains) > 0
}

// Accept reports whether key should be looked up
func (f *Filter) Accept(key string) bool {
	if f == nil {
		return true
	}
	if len(f.domains) > 0 && !f.acceptDomain(key) {
		return false
	}
	if f.pattern != nil && !f.pattern.MatchString(key) {
		return false
	}
	return true
}

func (f *Filter) acceptDomain(key string) bool {
	at := strings.LastIndexByte(key, '@')
	if at <= 0 || at == len(key)-1 {
		return false
	}
	domain := strings.ToLower(key[at+1:])

	for _, e := range f.domains {
		var match bool
		if e.suffix {
			match = strings.HasSuffix(domain, e.name)
		} else {
			match = domain == e.name
		}
		if match {
			return !e.negated
		}
	}
	return false
}
