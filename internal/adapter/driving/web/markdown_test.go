package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("hello world")
	assert.Contains(t, result, "hello world")
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**bold text**")
	assert.Contains(t, result, "<strong>bold text</strong>")
}

func TestRenderMarkdown_InlineCode(t *testing.T) {
	result := RenderMarkdown("use `fmt.Println`")
	assert.Contains(t, result, "<code>fmt.Println</code>")
}

func TestRenderMarkdown_CodeBlock(t *testing.T) {
	input := "```go\nfmt.Println(\"hello\")\n```"
	result := RenderMarkdown(input)
	assert.Contains(t, result, "<code")
	assert.Contains(t, result, "fmt.Println")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_GFMStrikethrough(t *testing.T) {
	result := RenderMarkdown("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestRenderMarkdown_GFMTaskList(t *testing.T) {
	result := RenderMarkdown("- [x] done\n- [ ] todo")
	assert.Contains(t, result, "<li>")
	assert.Contains(t, result, "done")
	assert.Contains(t, result, "todo")
}

func TestRenderMarkdown_UnterminatedFence(t *testing.T) {
	result := RenderMarkdown("## ✅ Corrected Code Snippet\n```python\ndef f(x):")
	assert.Contains(t, result, "Corrected Code Snippet</h2>")
	assert.Contains(t, result, "def f(x):")
}

func TestRenderMarkdown_KeepsCursor(t *testing.T) {
	result := RenderMarkdown("partial text▌")
	assert.Contains(t, result, "partial text▌")
}

func TestRenderMarkdown_CodeLanguageClass(t *testing.T) {
	result := RenderMarkdown("```python\nprint(1)\n```")
	assert.Contains(t, result, `class="language-python"`)
}

func TestRenderSource_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderSource("", "main.py"))
}

func TestRenderSource_LanguageFromExtension(t *testing.T) {
	result := RenderSource("print(1)", "Main.PY")
	assert.Equal(t, `<pre><code class="language-python">print(1)</code></pre>`, result)
}

func TestRenderSource_PastedCodeHasNoLanguage(t *testing.T) {
	result := RenderSource("x", "")
	assert.Equal(t, "<pre><code>x</code></pre>", result)
}

func TestRenderSource_EscapesHTML(t *testing.T) {
	result := RenderSource("<script>alert('xss')</script>\nif a < b && c > d {}", "page.html")

	assert.NotContains(t, result, "<script>")
	assert.Contains(t, result, "&lt;script&gt;")
	assert.Contains(t, result, "a &lt; b &amp;&amp; c &gt; d")
}

func TestRenderSource_PreservesNewlines(t *testing.T) {
	result := RenderSource("a\nb\nc\n", "x.js")
	assert.Equal(t, 3, strings.Count(result, "\n"))
}
