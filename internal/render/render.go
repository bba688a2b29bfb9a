// Package render converts user-authored markdown into sanitized HTML for
// gateway responses. Raw content is stored and transmitted as plain text;
// HTML exists only in the rendered view.
package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type TextRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *TextRenderer {
	return &TextRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// HTML renders markdown and sanitizes the result. Falls back to the
// sanitized raw text if rendering fails; never returns unsafe markup.
func (r *TextRenderer) HTML(content string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return r.policy.Sanitize(content)
	}
	return r.policy.Sanitize(buf.String())
}
