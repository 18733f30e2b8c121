package render

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes markup from an HTML rendering, leaving the plain text
// with entities resolved. Used for the Matrix fallback body.
func StripTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
