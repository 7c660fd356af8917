// Package markup handles the limited body markup allowed in notifications:
// <b>, <i>, <u>, <a href="...">, and <img src="..." alt="...">. Anything else
// is stripped before the body is stored, so the published snapshot only ever
// carries tags a renderer is expected to understand.
package markup

import "strings"

func allowedTag(name string) bool {
	switch name {
	case "b", "i", "u", "a", "img":
		return true
	}
	return false
}

// tagName extracts the element name from the inside of a tag, e.g.
// `/a` -> "a", `img src="x"` -> "img".
func tagName(inner string) string {
	inner = strings.TrimPrefix(inner, "/")
	inner = strings.TrimSuffix(inner, "/")
	if i := strings.IndexAny(inner, " \t\n"); i >= 0 {
		inner = inner[:i]
	}
	return strings.ToLower(strings.TrimSpace(inner))
}

// looksLikeTag reports whether the text between '<' and '>' reads as an
// element: an optional '/' followed by a letter. A bare "< 2" comparison in
// body text does not, and is kept literally.
func looksLikeTag(inner string) bool {
	inner = strings.TrimPrefix(inner, "/")
	if inner == "" {
		return false
	}
	c := inner[0]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// sanitize walks the body, copying text and handing each recognized tag to
// keep, which decides whether the tag markup itself is emitted.
func sanitize(body string, keep func(name string) bool) string {
	var b strings.Builder
	b.Grow(len(body))

	for {
		lt := strings.IndexByte(body, '<')
		if lt < 0 {
			b.WriteString(body)
			return b.String()
		}
		b.WriteString(body[:lt])
		rest := body[lt:]

		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			// Unterminated '<': display text, not markup.
			b.WriteString(rest)
			return b.String()
		}

		inner := rest[1:gt]
		if !looksLikeTag(inner) {
			b.WriteByte('<')
			body = rest[1:]
			continue
		}

		if keep(tagName(inner)) {
			b.WriteString(rest[:gt+1])
		}
		body = rest[gt+1:]
	}
}

// Sanitize removes all tags outside the supported set, keeping their inner
// text.
func Sanitize(body string) string {
	return sanitize(body, allowedTag)
}

// Strip removes every tag and decodes the basic entities, producing plain
// text for log lines and terminal listings.
func Strip(body string) string {
	return decodeEntities(sanitize(body, func(string) bool { return false }))
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return entityReplacer.Replace(s)
}
