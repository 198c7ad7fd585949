package events

import (
	"net/url"
	"strings"
)

// BuildContactLink returns a mailto URI for address. A non-empty subject and
// body are appended as query parameters, subject first. Spaces are encoded
// as %20, never as '+', since mail clients do not decode '+' in mailto URIs.
// The address is escaped like a query value except for '@', so '&', '=' and
// '?' in it cannot start or split the query.
func BuildContactLink(address, subject, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(strings.ReplaceAll(queryEscape(address), "%40", "@"))

	sep := "?"
	for _, p := range [...]struct{ key, value string }{
		{"subject", subject},
		{"body", body},
	} {
		if p.value == "" {
			continue
		}
		b.WriteString(sep)
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(queryEscape(p.value))
		sep = "&"
	}
	return b.String()
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Dedent removes the leading whitespace common to every line of s. Lines
// made only of spaces and tabs are emptied first and do not count towards
// the common margin. Tabs and spaces are not treated as equivalent.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")

	margin := ""
	first := true
	for i, line := range lines {
		indent := leadingBlank(line)
		if indent == line {
			lines[i] = ""
			continue
		}
		if first {
			margin = indent
			first = false
			continue
		}
		margin = commonPrefix(margin, indent)
	}

	if margin != "" {
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(line, margin)
		}
	}
	return strings.Join(lines, "\n")
}

func leadingBlank(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
