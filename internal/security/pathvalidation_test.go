package security

import (
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	safe := t.TempDir()

	if err := ValidatePathWithinDirectory(filepath.Join(safe, "models"), safe); err != nil {
		t.Errorf("path inside safe dir rejected: %v", err)
	}

	if err := ValidatePathWithinDirectory(filepath.Join(safe, "..", "escape"), safe); err == nil {
		t.Error("expected traversal outside safe dir to be rejected")
	}

	if err := ValidatePathWithinDirectory("/etc/passwd", safe); err == nil {
		t.Error("expected absolute path outside safe dir to be rejected")
	}
}

func TestValidatePathWithinAllowedDirs(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()

	if err := ValidatePathWithinAllowedDirs(filepath.Join(b, "x"), []string{a, b}); err != nil {
		t.Errorf("path inside second allowed dir rejected: %v", err)
	}
	if err := ValidatePathWithinAllowedDirs(filepath.Join(a, "x"), nil); err == nil {
		t.Error("expected error for empty allowed dirs")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"January", "January"},
		{"2bed day 14", "2bed_day_14"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"###", "unknown"},
		{"a..b", "a..b"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
