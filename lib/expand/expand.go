package expand

import (
	"errors"
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
)

var Logger = logger.GetLogger("dict")

// DefaultFormat copies every value unchanged
const DefaultFormat = "%s"

// ErrInvalidFormat is returned by New for templates with unknown or dangling expansions
var ErrInvalidFormat = errors.New("invalid result format")

// needs records which parts of the value and the key a template uses
type needs struct {
	valueUser   bool
	valueDomain bool
	keyUser     bool
	keyDomain   bool
	// labels is the highest %1..%9 (key domain labels) used, 0 if none
	labels int
}

// Expander applies one compiled result_format template
type Expander struct {
	format string
	needs  needs
}

// New compiles a result_format template
func New(format string) (*Expander, error) {
	e := &Expander{format: format}
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		i++
		if i == len(format) {
			return nil, fmt.Errorf("%w: %q ends with %%", ErrInvalidFormat, format)
		}
		switch c := format[i]; {
		case c == '%', c == 's', c == 'S':
		case c == 'u':
			e.needs.valueUser = true
		case c == 'd':
			e.needs.valueDomain = true
		case c == 'U':
			e.needs.keyUser = true
		case c == 'D':
			e.needs.keyDomain = true
		case c >= '1' && c <= '9':
			e.needs.keyDomain = true
			if n := int(c - '0'); n > e.needs.labels {
				e.needs.labels = n
			}
		default:
			return nil, fmt.Errorf("%w: unknown expansion %%%c in %q", ErrInvalidFormat, c, format)
		}
	}
	return e, nil
}

// Default returns the expander for DefaultFormat
func Default() *Expander {
	e, _ := New(DefaultFormat)
	return e
}

// Format returns the template the expander was compiled from
func (e *Expander) Format() string {
	return e.format
}

// Expand appends value formatted for key to result, separated from
// earlier values by a comma. Values that cannot be expanded are skipped.
func (e *Expander) Expand(result *strings.Builder, value, key string) {
	if value == "" {
		Logger.Warningf("empty lookup result for %q, ignored", key)
		return
	}

	valueUser, valueDomain := splitAddress(value)
	if e.needs.valueDomain && valueDomain == "" {
		return
	}
	if e.needs.valueUser && valueUser == "" {
		return
	}

	keyUser, keyDomain := splitAddress(key)
	if e.needs.keyDomain && keyDomain == "" {
		return
	}
	if e.needs.keyUser && keyUser == "" {
		return
	}
	var labels []string
	if e.needs.labels > 0 {
		labels = strings.Split(keyDomain, ".")
		if len(labels) < e.needs.labels {
			return
		}
	}

	if result.Len() > 0 {
		result.WriteByte(',')
	}

	f := e.format
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			result.WriteByte(f[i])
			continue
		}
		i++
		switch c := f[i]; c {
		case '%':
			result.WriteByte('%')
		case 's':
			result.WriteString(value)
		case 'u':
			result.WriteString(valueUser)
		case 'd':
			result.WriteString(valueDomain)
		case 'S':
			result.WriteString(key)
		case 'U':
			result.WriteString(keyUser)
		case 'D':
			result.WriteString(keyDomain)
		default:
			// %1 is the rightmost label of the key domain
			result.WriteString(labels[len(labels)-int(c-'0')])
		}
	}
}

// splitAddress splits at the last @. Without @ the whole string is the local part.
func splitAddress(s string) (user, domain string) {
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return s, ""
	}
	return s[:at], s[at+1:]
}
