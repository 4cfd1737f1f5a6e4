package web

import (
	"bytes"
	"html"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(goldhtml.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	// Keep fenced block languages so the stylesheet can tint them.
	htmlSanitizer.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")
}

// RenderMarkdown converts model output to sanitized HTML. It is called on
// every partial buffer, so unterminated constructs (an open code fence, a
// half-written table) must render without error.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

var languageByExt = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".java": "java",
	".cpp":  "cpp",
	".html": "html",
	".css":  "css",
}

// RenderSource renders submitted code as an escaped <pre><code> block. The
// language class is derived from the file name and omitted for pasted code.
func RenderSource(code model.CodeBlob, fileName string) string {
	if code.Empty() {
		return ""
	}

	var buf strings.Builder
	buf.Grow(len(code) + 64)

	buf.WriteString("<pre><code")
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(fileName))]; ok {
		buf.WriteString(` class="language-`)
		buf.WriteString(lang)
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
	buf.WriteString(html.EscapeString(string(code)))
	buf.WriteString("</code></pre>")

	return buf.String()
}
