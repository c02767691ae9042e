package digest

import (
	"bytes"
	"html/template"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

var briefingTemplate = template.Must(template.New("briefing").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Hermes Daily Security Briefing {{.Date}}</title>
<style>
body { font-family: Georgia, serif; max-width: 46em; margin: 2em auto; padding: 0 1em; color: #1a1a1a; }
h1 { font-size: 1.4em; border-bottom: 2px solid #8b0000; padding-bottom: 0.3em; }
.meta { color: #666; font-size: 0.85em; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1em; color: #444; }
</style>
</head>
<body>
<h1>Hermes Daily Security Briefing</h1>
<p class="meta">{{.Date}}{{if .Model}} · ranked by {{.Model}}{{end}}</p>
{{.Body}}
</body>
</html>
`))

type renderData struct {
	Date  string
	Model string
	Body  template.HTML
}

// RenderHTML produces the HTML briefing document. The narrative is treated
// as markdown and converted with goldmark; models reliably emit markdown
// even when not asked to.
func RenderHTML(b *model.Briefing) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(b.Narrative), &body); err != nil {
		return nil, eris.Wrap(err, "digest: convert narrative")
	}

	var out bytes.Buffer
	err := briefingTemplate.Execute(&out, renderData{
		Date:  b.Date,
		Model: b.Model,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, eris.Wrap(err, "digest: render briefing")
	}
	return out.Bytes(), nil
}
