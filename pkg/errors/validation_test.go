package errors

import (
	"testing"
)

func TestCompilePatternsFullMatch(t *testing.T) {
	patterns, err := CompilePatterns([]string{`/rviz.*`, `/rosout`})
	if err != nil {
		t.Fatalf("CompilePatterns error: %v", err)
	}

	tests := []struct {
		name     string
		expected bool
	}{
		{"/rviz", true},
		{"/rviz2", true},
		{"/rosout", true},

		// Full-match semantics: a prefix hit is not enough.
		{"/my/rosout", false},
		{"/rosout_agg", false},
		{"/other", false},
	}
	for _, tt := range tests {
		if got := MatchAny(patterns, tt.name); got != tt.expected {
			t.Errorf("MatchAny(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestCompilePatternsInvalid(t *testing.T) {
	_, err := CompilePatterns([]string{`/ok`, `[`})
	if err == nil {
		t.Fatal("invalid pattern should be an error")
	}
	if !Is(err, ErrCodeInvalidPattern) {
		t.Errorf("wrong error code: %v", err)
	}
}

func TestMatchAnyEmpty(t *testing.T) {
	if MatchAny(nil, "/anything") {
		t.Error("empty pattern list should match nothing")
	}
}

func TestValidateNodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "/talker", false},
		{"valid nested", "/sensing/lidar/driver", false},
		{"valid with underscore", "/transform_listener_impl_5599bcbf0fa8", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"control char", "/foo\x01bar", true},
		{"newline", "/foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSnapshotName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "baseline", false},
		{"valid with space", "before refactor", false},
		{"valid with dots", "release-1.2.3", false},

		{"empty", "", true},
		{"leading dash", "-name", true},
		{"slash", "a/b", true},
		{"control char", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshotName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSnapshotName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
