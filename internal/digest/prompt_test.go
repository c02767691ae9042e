package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	articles := []model.Article{
		{Title: "Breach at Acme", Link: "https://example.com/breach", Published: "p", Summary: "plain text"},
		{Title: "Second", Link: "https://example.com/2"},
	}

	prompt, err := BuildPrompt(articles)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "You are a senior cybersecurity analyst"))
	assert.Contains(t, prompt, `"title": "Breach at Acme"`)
	assert.Contains(t, prompt, `"link": "https://example.com/2"`)
	assert.Contains(t, prompt, "Score each article from 1-10")
	assert.True(t, strings.HasSuffix(prompt, "\n"))
}

func TestBuildPromptStripsSummaryHTML(t *testing.T) {
	articles := []model.Article{
		{Title: "t", Link: "l", Summary: "<p>Attackers <b>exploited</b> a flaw.</p><script>alert(1)</script>"},
	}

	prompt, err := BuildPrompt(articles)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Attackers exploited a flaw.")
	assert.NotContains(t, prompt, "<p>")
	assert.NotContains(t, prompt, "alert(1)")
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "  just text  ", "just text"},
		{"tags removed", "<div><p>one</p>\n<p>two</p></div>", "one two"},
		{"script dropped", "before <script>var x=1</script> after", "before after"},
		{"style dropped", "<style>p{}</style>visible", "visible"},
		{"whitespace collapsed", "<p>a\n\n   b</p>", "a b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}
