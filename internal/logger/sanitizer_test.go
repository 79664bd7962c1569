package logger

import (
	"testing"
)

func TestSanitize_Patterns(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "unix home path",
			input:    "loading directory /home/alice/Music/Rock",
			expected: "loading directory /home/***/Music/Rock",
		},
		{
			name:     "macos home path",
			input:    "default location /Users/bob/Music",
			expected: "default location /Users/***/Music",
		},
		{
			name:     "windows user path",
			input:    `moving C:\Users\carol\Music\song.mp3`,
			expected: `moving ***:\Users\***\Music\song.mp3`,
		},
		{
			name:     "password in message",
			input:    "connect password=hunter2 done",
			expected: "connect password=*** done",
		},
		{
			name:     "no sensitive content",
			input:    "transferred 3 files",
			expected: "transferred 3 files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeArgs_SensitiveKeys(t *testing.T) {
	s := NewSanitizer()

	args := []any{"password", "supersecret99", "count", 3}
	result := s.SanitizeArgs(args)

	masked, ok := result[1].(string)
	if !ok || masked == "supersecret99" {
		t.Errorf("password value not masked: %v", result[1])
	}
	if result[3] != 3 {
		t.Errorf("non-sensitive value changed: %v", result[3])
	}
}

func TestSanitizeArgs_MasksHomeInPathValues(t *testing.T) {
	s := NewSanitizer()

	args := []any{"path", "/home/alice/Music"}
	result := s.SanitizeArgs(args)

	if result[1] != "/home/***/Music" {
		t.Errorf("home path in value not masked: %v", result[1])
	}
}

func TestSanitizeArgs_OddArgsPreserved(t *testing.T) {
	s := NewSanitizer()

	args := []any{"key", "value", "dangling"}
	result := s.SanitizeArgs(args)

	if len(result) != 3 {
		t.Errorf("args length changed: %d", len(result))
	}
	if result[2] != "dangling" {
		t.Errorf("dangling arg changed: %v", result[2])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		key       string
		sensitive bool
	}{
		{"password", true},
		{"Password", true},
		{"user_password", true},
		{"token", true},
		{"secret", true},
		{"auth_header", true},
		{"path", false},
		{"source", false},
		{"device", false},
	}

	for _, tt := range tests {
		if got := s.isSensitiveKey(tt.key); got != tt.sensitive {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", tt.key, got, tt.sensitive)
		}
	}
}

func TestAddRule(t *testing.T) {
	s := NewSanitizer()

	if err := s.AddRule(`serial=\d+`, "serial=***"); err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	got := s.Sanitize("device serial=12345 mounted")
	if got != "device serial=*** mounted" {
		t.Errorf("custom rule not applied: %q", got)
	}
}

func TestAddRule_InvalidPattern(t *testing.T) {
	s := NewSanitizer()

	if err := s.AddRule(`([`, "x"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
