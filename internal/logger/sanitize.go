package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxLoggedPathLength bounds URL paths in log output.
const maxLoggedPathLength = 500

// SanitizePath makes a URL path safe to log: invalid UTF-8 is replaced,
// control characters are stripped, and overly long paths are truncated.
func SanitizePath(path string) string {
	if path == "" {
		return ""
	}

	if !utf8.ValidString(path) {
		path = strings.ToValidUTF8(path, "")
	}

	var b strings.Builder
	b.Grow(len(path))
	for _, r := range path {
		if unicode.IsPrint(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	path = b.String()

	if len(path) > maxLoggedPathLength {
		path = path[:maxLoggedPathLength] + "..."
	}

	return path
}
