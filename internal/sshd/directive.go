package sshd

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDirective turns one sanitized line into a directive name and value.
// It returns ok == false for a line that does not have the shape its
// directive requires, such as a Subsystem line without a command.
//
//	Port 22                                   -> "Port", 22
//	PermitRootLogin no                        -> "PermitRootLogin", false
//	Subsystem sftp /usr/lib/openssh/sftp-server -> "Subsystem sftp", "/usr/lib/openssh/sftp-server"
//	AcceptEnv LANG LC_*                       -> "AcceptEnv", "LANG LC_*"
//	GSSAPIAuthentication                      -> "GSSAPIAuthentication", flag
func ParseDirective(line string) (key string, value Value, ok bool) {
	word, _ := splitWord(line)
	switch strings.ToLower(word) {
	case "subsystem":
		return parseSubsystem(line)
	case "acceptenv":
		return parseAcceptEnv(line)
	}

	fields := splitFields(line, 2)
	switch len(fields) {
	case 1:
		return fields[0], FlagValue(), true
	case 2:
		return fields[0], Coerce(fields[1]), true
	}
	return "", Value{}, false
}

// parseSubsystem keys the line by subsystem name, so that several subsystems
// can coexist: "Subsystem sftp internal-sftp" -> "Subsystem sftp".
func parseSubsystem(line string) (string, Value, bool) {
	fields := splitFields(line, 3)
	if len(fields) != 3 {
		return "", Value{}, false
	}
	return "Subsystem " + fields[1], StringValue(fields[2]), true
}

// parseAcceptEnv keeps the variable list verbatim.
func parseAcceptEnv(line string) (string, Value, bool) {
	fields := splitFields(line, 2)
	if len(fields) != 2 {
		return "", Value{}, false
	}
	return "AcceptEnv", StringValue(fields[1]), true
}

// Coerce converts a raw directive argument into a typed Value. One pair of
// surrounding double quotes is removed, then the argument is read as a
// base-10 integer, as yes/no (any case), or kept as a string. Integers are
// bounded by int64; a number outside that range stays a string.
func Coerce(raw string) Value {
	s := raw
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(n)
	}
	switch strings.ToLower(s) {
	case "yes":
		return BoolValue(true)
	case "no":
		return BoolValue(false)
	}
	return StringValue(s)
}

// splitWord returns the first whitespace-separated word of line and the
// trimmed remainder.
func splitWord(line string) (string, string) {
	fields := splitFields(line, 2)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	}
	return fields[0], fields[1]
}

// splitFields splits s around runs of whitespace into at most n fields. The
// last field holds the trimmed remainder of s.
func splitFields(s string, n int) []string {
	var fields []string
	s = strings.TrimSpace(s)
	for s != "" {
		if len(fields) == n-1 {
			return append(fields, s)
		}
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			return append(fields, s)
		}
		fields = append(fields, s[:i])
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	return fields
}
