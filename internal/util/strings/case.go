// Package strings converts between the identifier forms the generator
// derives from record and field names.
package strings

import (
	"strings"
	"unicode"
)

// initialisms are upper-cased as a whole when they lead an identifier
// or follow a lower-to-upper boundary.
var initialisms = map[string]string{
	"id":    "ID",
	"url":   "URL",
	"uri":   "URI",
	"uuid":  "UUID",
	"api":   "API",
	"http":  "HTTP",
	"https": "HTTPS",
	"json":  "JSON",
	"xml":   "XML",
	"html":  "HTML",
	"css":   "CSS",
	"sql":   "SQL",
	"ip":    "IP",
	"tcp":   "TCP",
	"udp":   "UDP",
}

// ToExported turns a Go identifier into its exported form.
// Leading initialisms are upper-cased (id -> ID, urlPath -> URLPath),
// snake_case parts are joined (created_at -> CreatedAt).
func ToExported(name string) string {
	if name == "" {
		return ""
	}

	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(exportPart(part))
	}
	if b.Len() == 0 {
		// Identifier made of underscores only
		return name
	}
	return b.String()
}

// exportPart upper-cases the first word of a camelCase part, using the
// initialism table when the whole first word is one.
func exportPart(part string) string {
	runes := []rune(part)

	// Length of the leading lower-case word
	n := 0
	for n < len(runes) && !unicode.IsUpper(runes[n]) {
		n++
	}

	if upper, ok := initialisms[strings.ToLower(string(runes[:n]))]; ok {
		return upper + string(runes[n:])
	}

	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ToUnexported turns a Go identifier into its unexported form.
// A leading run of capitals is lowered as one word (URLPath -> urlPath,
// ID -> id).
func ToUnexported(name string) string {
	runes := []rune(name)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return name
	}

	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}

	switch {
	case n == 1 || n == len(runes):
		// User -> user, ID -> id
		for i := 0; i < n; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	default:
		// URLPath -> urlPath: the last capital starts the next word
		for i := 0; i < n-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}
