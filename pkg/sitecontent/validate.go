package sitecontent

import (
	"regexp"
	"strings"
)

var safePathPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_./]+$`)

// IsSafePath reports whether key may be used to address storage: it must be
// non-empty, free of "..", and made only of letters, digits, '-', '_', '.'
// and '/'.
func IsSafePath(key string) bool {
	if key == "" || strings.Contains(key, "..") {
		return false
	}
	return safePathPattern.MatchString(key)
}

// IsUploadKey reports whether key is a safe path inside the upload namespace.
func IsUploadKey(key string) bool {
	return IsSafePath(key) && strings.HasPrefix(key, UploadPrefix)
}
