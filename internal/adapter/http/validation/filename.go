package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxFilenameLength is the maximum allowed filename length (common filesystem limit).
const maxFilenameLength = 255

// dangerousChars contains characters that must be replaced in filenames.
// These can cause HTTP header injection or path traversal.
var dangerousChars = map[rune]bool{
	'"':  true,
	'\\': true,
	'/':  true,
	':':  true,
	'\n': true,
	'\r': true,
}

// SanitizeFilename sanitizes a filename for safe use in Content-Disposition
// headers. Dangerous characters and control characters become underscores,
// Unicode is preserved, and the result is truncated to 255 bytes while
// keeping the extension.
func SanitizeFilename(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))

	for _, r := range name {
		if r < 32 || r == 127 || dangerousChars[r] {
			sb.WriteRune('_')
		} else {
			sb.WriteRune(r)
		}
	}

	result := strings.TrimSpace(sb.String())
	if strings.Trim(result, "_") == "" {
		return "file"
	}

	if len(result) > maxFilenameLength {
		ext := filepath.Ext(result)
		if len(ext) == 0 || len(ext) >= maxFilenameLength {
			return truncateToBytes(result, maxFilenameLength)
		}
		base := result[:len(result)-len(ext)]
		result = truncateToBytes(base, maxFilenameLength-len(ext)) + ext
	}

	return result
}

// ContentDisposition returns a safe attachment Content-Disposition value
// for the given filename.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", SanitizeFilename(filename))
}

// truncateToBytes truncates a UTF-8 string to at most maxBytes bytes
// without cutting a multi-byte character in half.
func truncateToBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:maxBytes])
		if r != utf8.RuneError {
			break
		}
		maxBytes--
	}
	return s[:maxBytes]
}
