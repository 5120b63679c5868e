package siteindex

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleTag = regexp.MustCompile(`(?is)<title>(.*?)</title>`)

var titleCaser = cases.Title(language.English)

// ExtractTitle returns the first <title> of an HTML document, trimmed and escaped.
// ok is false when there is no title tag or it is blank.
func ExtractTitle(content []byte) (string, bool) {
	m := titleTag.FindSubmatch(content)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(string(m[1]))
	if title == "" {
		return "", false
	}
	return html.EscapeString(title), true
}

// FallbackTitle derives a human-cased title from a filename:
// "my-cool_demo.html" becomes "My Cool Demo".
func FallbackTitle(name, ext string) string {
	base := strings.TrimSuffix(name, ext)
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return html.EscapeString(titleCaser.String(base))
}
