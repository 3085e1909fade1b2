package errors

import (
	"regexp"
	"unicode"
)

// CompilePatterns compiles a list of filter patterns with full-match
// semantics: each pattern must match the entire node or topic name, so
// "/rviz" does not accidentally hide "/rviz_satellite". Patterns are
// anchored before compilation.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, Wrap(ErrCodeInvalidPattern, err, "invalid filter pattern %q", p)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// MatchAny reports whether any compiled pattern matches the name.
func MatchAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// ValidateNodeName validates a ROS node or topic name for use in lookups
// and API paths.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "node name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "node name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node name contains invalid control characters")
		}
	}
	return nil
}

// snapshotNameRegex matches snapshot names safe for storage and display.
var snapshotNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._ -]*$`)

// ValidateSnapshotName validates a user-supplied snapshot name.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "snapshot name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "snapshot name too long (max 128 characters)")
	}
	if !snapshotNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid snapshot name: %q", name)
	}
	return nil
}
