package render

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// converterPool reuses goldmark instances across requests; each Convert call
// gets its own instance.
var converterPool = sync.Pool{
	New: func() interface{} {
		return goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	},
}

// sanitizer is safe for concurrent use once configured.
var sanitizer = bluemonday.UGCPolicy()

// Markdown renders message text to sanitized HTML. Text that fails to convert
// is shown escaped as-is.
func Markdown(text string) template.HTML {
	md := converterPool.Get().(goldmark.Markdown)
	defer converterPool.Put(md)

	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
