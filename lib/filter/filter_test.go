package filter

import "testing"

func TestAccept(t *testing.T) {
	tests := []struct {
		name    string
		domains string
		pattern string
		keys    map[string]bool
	}{
		{
			name: "no filter",
			keys: map[string]bool{"alice": true, "alice@example.org": true, "": true},
		},
		{
			name:    "domain list",
			domains: "example.org, Example.NET",
			keys: map[string]bool{
				"alice@example.org":     true,
				"alice@EXAMPLE.net":     true,
				"alice@sub.example.org": false,
				"alice@example.com":     false,
				"alice":                 false,
				"@example.org":          false,
				"alice@":                false,
			},
		},
		{
			name:    "subdomains and exclusion",
			domains: "!secret.example.org .example.org",
			keys: map[string]bool{
				"alice@mail.example.org":   true,
				"alice@secret.example.org": false,
				"alice@example.org":        false,
			},
		},
		{
			name:    "key pattern",
			pattern: `^[a-z]+@`,
			keys: map[string]bool{
				"alice@example.org": true,
				"Alice@example.org": false,
				"alice":             false,
			},
		},
		{
			name:    "domain and pattern",
			domains: "example.org",
			pattern: `^postmaster@`,
			keys: map[string]bool{
				"postmaster@example.org": true,
				"alice@example.org":      false,
				"postmaster@other.org":   false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.domains, tt.pattern)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			for key, expected := range tt.keys {
				if got := f.Accept(key); got != expected {
					t.Errorf("Accept(%q) = %v, want %v", key, got, expected)
				}
			}
		})
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New("", "(unclosed"); err == nil {
		t.Errorf("Expected error for invalid key pattern")
	}
	if _, err := New("!", ""); err == nil {
		t.Errorf("Expected error for empty negated domain")
	}
	if _, err := New("example.com hash:/etc/postfix/domains", ""); err == nil {
		t.Errorf("Expected error for domain table")
	}
}

func TestNilFilter(t *testing.T) {
	var f *Filter
	if !f.Accept("anything") {
		t.Errorf("nil filter must accept every key")
	}
}
