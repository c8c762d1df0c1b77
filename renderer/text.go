package renderer

import (
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
)

// plainText flattens the text below n. Inline nodes are joined as written;
// blocks and line breaks are separated by a single space. Code blocks and raw
// HTML are left out.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			// Typographer output such as "&rsquo;".
			b.WriteString(html.UnescapeString(string(v.Value)))
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// headingIDs hands out anchor ids for one document. Repeats of a slug are
// numbered "slug-1", "slug-2" in order of appearance.
type headingIDs map[string]int

func (seen headingIDs) assign(h *ast.Heading, label string) string {
	if raw, ok := h.AttributeString("id"); ok {
		var explicit string
		switch v := raw.(type) {
		case []byte:
			explicit = string(v)
		case string:
			explicit = v
		}
		if explicit != "" {
			seen[explicit]++
			return explicit
		}
	}

	base := slug(label)
	id := base
	if n := seen[base]; n > 0 {
		id = base + "-" + strconv.Itoa(n)
	}
	seen[base]++
	h.SetAttributeString("id", []byte(id))
	return id
}

// slug lowercases text and keeps letters and digits, turning runs of spaces,
// dashes, underscores and dots into one dash. Empty results become "section".
func slug(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			dash = true
		}
	}
	if b.Len() == 0 {
		return "section"
	}
	return b.String()
}
