package digest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// The narrative layout is whatever the model felt like that day, so section
// extraction is best-effort with a raw-text fallback. These patterns cover
// the label styles observed in practice: "Headline: X", "**Headline:** X",
// "### 1. Headline: X" and friends.
var (
	headlineRe = regexp.MustCompile(`(?im)^\s*(?:#+\s*)?(?:\d+[.)]\s*)?(?:[-•*]\s*)?\**headline\**\s*[:\-]\s*\**(.+?)\**\s*$`)
	scoreRe    = regexp.MustCompile(`(?im)^\s*(?:[-•*]\s*)?\**score\**\s*[:\-]\s*\**\s*(\d{1,2})`)
	whyRe      = regexp.MustCompile(`(?im)^\s*(?:[-•*]\s*)?\**why (?:executives should care|it matters)\**\s*[:\-]\s*(.+)$`)
	bulletRe   = regexp.MustCompile(`(?m)^\s*[-•*]\s+(.+)$`)
)

// ParseNarrative extracts the ranked items from the model's free text.
// When no headline sections are found it returns nil and callers fall back
// to the raw narrative; a parse miss is never an error.
func ParseNarrative(text string) []model.BriefingItem {
	matches := headlineRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var items []model.BriefingItem
	for i, m := range matches {
		sectionEnd := len(text)
		if i+1 < len(matches) {
			sectionEnd = matches[i+1][0]
		}
		section := text[m[1]:sectionEnd]

		item := model.BriefingItem{
			Headline: strings.Trim(strings.TrimSpace(text[m[2]:m[3]]), `*"`),
		}
		if sm := scoreRe.FindStringSubmatch(section); sm != nil {
			item.Score, _ = strconv.Atoi(sm[1])
		}
		if wm := whyRe.FindStringSubmatch(section); wm != nil {
			item.WhyItMatters = strings.TrimSpace(wm[1])
		}
		for _, bm := range bulletRe.FindAllStringSubmatch(section, -1) {
			line := strings.TrimSpace(bm[1])
			if isLabelLine(line) {
				continue
			}
			item.Bullets = append(item.Bullets, line)
		}
		items = append(items, item)
	}
	return items
}

// isLabelLine filters out labelled lines that happen to be formatted as
// bullets, so they are not duplicated into the bullet list.
func isLabelLine(line string) bool {
	l := strings.ToLower(strings.TrimLeft(line, "*# "))
	return strings.HasPrefix(l, "headline") ||
		strings.HasPrefix(l, "score") ||
		strings.HasPrefix(l, "why ")
}
