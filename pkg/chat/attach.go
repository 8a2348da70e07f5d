package chat

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jmuk/convo/pkg/parts"
)

func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\\' {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unescape(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// splitWords splits the line at unescaped spaces. Escapes are removed.
func splitWords(line string) []string {
	var words []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case unicode.IsSpace(r):
			if cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

// attachmentRefs returns the paths referred as @path in the line.
func attachmentRefs(line string) []string {
	var refs []string
	for _, w := range splitWords(line) {
		if len(w) > 1 && w[0] == '@' {
			refs = append(refs, w[1:])
		}
	}
	return refs
}

// attach builds the content of a submission. Every @path naming a regular
// file under the root is read and attached; other references stay plain
// text and are reported in skipped.
func (c *Chat) attach(text string) (content parts.Content, skipped []string) {
	refs := attachmentRefs(text)
	if len(refs) == 0 || c.root == nil {
		return parts.Text(text), nil
	}
	ps := []parts.Part{parts.TextPart(text)}
	for _, ref := range refs {
		p, err := parts.ReadFile(c.root, ref)
		if err != nil {
			c.logger.Debug("Not attaching", "ref", ref, "error", err)
			skipped = append(skipped, fmt.Sprintf("%s: %v", ref, err))
			continue
		}
		c.logger.Debug("Attaching", "file", p.File, "mime_type", p.MimeType, "size", len(p.Data))
		ps = append(ps, p)
	}
	if len(ps) == 1 {
		return parts.Text(text), skipped
	}
	return parts.Parts(ps...), skipped
}
