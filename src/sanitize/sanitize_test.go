package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "color codes",
			input:    "\x1b[31mERROR\x1b[0m: something failed",
			expected: "ERROR: something failed",
		},
		{
			name:     "no ANSI",
			input:    "plain text message",
			expected: "plain text message",
		},
		{
			name:     "multiple codes",
			input:    "\x1b[1m\x1b[31mbold red\x1b[0m normal",
			expected: "bold red normal",
		},
		{
			name:     "APC timestamp marker",
			input:    "\x1b_bk;t=1765886936038\x07[ERROR] message",
			expected: "[ERROR] message",
		},
		{
			name:     "newlines survive",
			input:    "\x1b[32mok\x1b[0m\nnext",
			expected: "ok\nnext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripANSI(tt.input)
			if result != tt.expected {
				t.Errorf("StripANSI(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "full cleanup",
			input:    "2024-01-01T12:00:00.0000000Z \x1b[31mERROR\x1b[0m: message\r\n",
			expected: "2024-01-01T12:00:00.0000000Z ERROR: message",
		},
		{
			name:     "carriage returns",
			input:    "line1\r\nline2\r",
			expected: "line1\nline2",
		},
		{
			name:     "already clean",
			input:    "clean message",
			expected: "clean message",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clean(tt.input)
			if result != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxBytes int
		expected string
	}{
		{
			name:     "unlimited",
			input:    "abcdef",
			maxBytes: 0,
			expected: "abcdef",
		},
		{
			name:     "under limit",
			input:    "abc",
			maxBytes: 10,
			expected: "abc",
		},
		{
			name:     "exactly at limit",
			input:    "abc",
			maxBytes: 3,
			expected: "abc",
		},
		{
			name:     "limit too small for marker",
			input:    "abcdef",
			maxBytes: 4,
			expected: "abcd",
		},
		{
			name:     "multibyte rune is not split",
			input:    "abécd", // é is two bytes
			maxBytes: 3,
			expected: "ab",
		},
		{
			name:     "marker fits inside limit",
			input:    strings.Repeat("x", 1000),
			maxBytes: 100,
			expected: strings.Repeat("x", 74) + "\n... [truncated 926 bytes]",
		},
		{
			name:     "marker with multibyte text",
			input:    strings.Repeat("é", 100),
			maxBytes: 50,
			expected: strings.Repeat("é", 12) + "\n... [truncated 176 bytes]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Truncate(tt.input, tt.maxBytes)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, expected %q", tt.input, tt.maxBytes, result, tt.expected)
			}
			if !utf8.ValidString(result) {
				t.Errorf("Truncate produced invalid UTF-8: %q", result)
			}
			if tt.maxBytes > 0 && len(result) > tt.maxBytes {
				t.Errorf("Truncate(%q, %d) returned %d bytes", tt.input, tt.maxBytes, len(result))
			}
		})
	}
}

func TestTruncate_StaysWithinLimit(t *testing.T) {
	input := strings.Repeat("log line\n", 5000)
	for _, limit := range []int{1, 23, 24, 25, 26, 27, 99, 100, 101, 1024, 49999} {
		result := Truncate(input, limit)
		if len(result) > limit {
			t.Errorf("Truncate(_, %d) returned %d bytes", limit, len(result))
		}
		if !strings.HasPrefix(input, strings.SplitN(result, "\n... [truncated", 2)[0]) {
			t.Errorf("Truncate(_, %d) did not keep a prefix: %q", limit, result)
		}
	}
}
