package expand

import (
	"errors"
	"strings"
	"testing"
)

func TestNewInvalid(t *testing.T) {
	for _, format := range []string{"%", "abc%", "%x", "%0", "%s%"} {
		if _, err := New(format); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("New(%q): expected ErrInvalidFormat, got %v", format, err)
		}
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		key      string
		values   []string
		expected string
	}{
		{"default", DefaultFormat, "alice", []string{"a@x", "b@x"}, "a@x,b@x"},
		{"literal percent", "100%% %s", "alice", []string{"a@x"}, "100% a@x"},
		{"user and domain", "%u at %d", "alice", []string{"a@x.org"}, "a at x.org"},
		{"user without domain", "%u", "alice", []string{"local"}, "local"},
		{"domain missing is skipped", "%d", "alice", []string{"local", "b@y"}, "y"},
		{"empty user is skipped", "%u", "alice", []string{"@x", "b@x"}, "b"},
		{"key domain labels", "%3.%2.%1", "alice@mail.example.org", []string{"a@x"}, "mail.example.org"},
		{"labels with key domain", "%1/%D", "alice@example.com", []string{"a@x.org"}, "com/example.com"},
		{"labels for value without domain", "%s.%1", "alice@example.com", []string{"plainvalue"}, "plainvalue.com"},
		{"key with too few labels", "%2", "alice@org", []string{"a@x", "b@example.org"}, ""},
		{"key without domain has no labels", "%1", "alice", []string{"a@x"}, ""},
		{"key parts", "%s for %U of %D (%S)", "alice@example.org", []string{"a@x"}, "a@x for alice of example.org (alice@example.org)"},
		{"key without domain", "%D", "alice", []string{"a@x"}, ""},
		{"empty value is skipped", "%s", "alice", []string{"", "a@x"}, "a@x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.format)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tt.format, err)
			}
			var result strings.Builder
			for _, v := range tt.values {
				e.Expand(&result, v, tt.key)
			}
			if result.String() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result.String())
			}
		})
	}
}

func TestDefault(t *testing.T) {
	if Default().Format() != "%s" {
		t.Errorf("Unexpected default format %q", Default().Format())
	}
}
