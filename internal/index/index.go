// Package index serves the landing page of the service.
package index

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
)

const loggerName = "index"

//go:embed index.md
var content []byte

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
<style>
body { font-family: sans-serif; max-width: 50rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
{{ .Content }}
<footer><small>{{ .Title }} {{ .Version }}</small></footer>
</body>
</html>
`))

// Page is the rendered landing page.
type Page struct {
	html   []byte
	logger *zap.Logger
}

// New renders the landing page. version is shown in the footer.
func New(title, version string) (*Page, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var rendered bytes.Buffer
	if err := md.Convert(content, &rendered); err != nil {
		return nil, fmt.Errorf("rendering markdown failed: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title   string
		Version string
		// rendered from the embedded markdown file, not from user input
		Content template.HTML
	}{
		Title:   title,
		Version: version,
		Content: template.HTML(rendered.String()), //nolint:gosec
	})
	if err != nil {
		return nil, fmt.Errorf("executing page template failed: %w", err)
	}

	return &Page{
		html:   page.Bytes(),
		logger: zap.L().Named(loggerName),
	}, nil
}

func (p *Page) HTTPHandler(resp http.ResponseWriter, _ *http.Request) {
	resp.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := resp.Write(p.html); err != nil {
		p.logger.Debug("writing http response failed", logfields.Event("index_response_failed"), zap.Error(err))
	}
}
