package platform

import (
	"bytes"
	_ "embed"
	"log/slog"
	"net/http"
	"sync"

	"github.com/yuin/goldmark"
	hl "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

//go:embed docs.md
var docsMarkdown []byte

var (
	docsOnce sync.Once
	docsHTML []byte
)

// DocsPage serves the rendered API documentation. The markdown is
// converted once per process.
func DocsPage(w http.ResponseWriter, r *http.Request) {
	docsOnce.Do(func() {
		var buf bytes.Buffer
		err := goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				hl.NewHighlighting(hl.WithStyle("github")),
			),
		).Convert(docsMarkdown, &buf)
		if err != nil {
			slog.Error("DocsPage: markdown conversion failed", "err", err)
			docsHTML = []byte("<h1>compiler-explorer</h1>")
			return
		}
		docsHTML = buf.Bytes()
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(docsHTML)
}
