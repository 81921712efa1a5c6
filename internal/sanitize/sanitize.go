// Package sanitize turns operator-written catalog text into content that is
// safe to embed in a Telegram HTML message.
package sanitize

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	blockBreaks = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?li>|</?h[1-6]>`)
	blankRuns   = regexp.MustCompile(`\n\s*\n+`)
)

// Policy flattens markdown and HTML to escaped plain text.
type Policy struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewTelegramPolicy returns a Policy that keeps no markup at all. Telegram
// accepts only a handful of tags, so the bot adds its own formatting around
// the sanitized text instead of passing operator markup through.
func NewTelegramPolicy() *Policy {
	return &Policy{
		policy:   bluemonday.StrictPolicy(),
		markdown: goldmark.New(),
	}
}

// HTML renders text as markdown, strips every tag and returns the remaining
// text with HTML entities escaped, ready for parse mode HTML.
func (p *Policy) HTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(text), &buf); err != nil {
		return p.policy.Sanitize(text)
	}

	out := blockBreaks.ReplaceAllString(buf.String(), "\n")
	out = p.policy.Sanitize(out)
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
