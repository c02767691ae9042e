// Package digest turns a day's ledger entry into the ranked executive
// briefing: prompt construction, the LLM call, narrative parsing, HTML and
// RSS rendering, and SMTP delivery.
package digest

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

const systemPrompt = "You are concise, skeptical, and executive-focused."

const promptHeader = `You are a senior cybersecurity analyst advising executives.

Task:
- Score each article from 1-10 based on business risk, reputational damage, and executive concern.
- Select the top 3.
- For each, provide:
  - Headline
  - Score
  - 3-4 blunt, plain-language bullets
  - One sentence on why executives should care

Articles:
`

// BuildPrompt renders the analyst prompt over the day's articles. Summaries
// are stripped of HTML first so the model sees text, not markup.
func BuildPrompt(articles []model.Article) (string, error) {
	cleaned := make([]model.Article, len(articles))
	for i, a := range articles {
		a.Summary = StripHTML(a.Summary)
		cleaned[i] = a
	}

	raw, err := json.MarshalIndent(cleaned, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "digest: marshal articles")
	}
	return promptHeader + string(raw) + "\n", nil
}

// StripHTML extracts the visible text of an HTML fragment and collapses
// whitespace. Plain-text input comes back trimmed but otherwise unchanged.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
