package hostfile

import "strings"

// Sanitize trims every line and drops blank lines and comments. A line is a
// comment when, once trimmed, it starts with one of commentPrefixes; "#" is
// used when none are given. Order is preserved and nothing else is altered.
func Sanitize(lines []string, commentPrefixes ...string) []string {
	if len(commentPrefixes) == 0 {
		commentPrefixes = []string{"#"}
	}

	clean := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isComment(trimmed, commentPrefixes) {
			continue
		}
		clean = append(clean, trimmed)
	}
	return clean
}

func isComment(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
