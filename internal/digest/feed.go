package digest

import (
	"fmt"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/rotisserie/eris"

	"github.com/hermes-sec/hermes-cli/internal/model"
)

// RenderFeed renders the briefing as RSS so it can be consumed by feed
// readers alongside email delivery. Parsed items become individual feed
// items; an unparsed narrative becomes a single item.
func RenderFeed(b *model.Briefing, selfURL string) ([]byte, error) {
	feed := &feeds.Feed{
		Title:       "Hermes Daily Security Briefing",
		Link:        &feeds.Link{Href: selfURL},
		Description: "Ranked daily cybersecurity news digest",
		Created:     b.GeneratedAt,
	}

	if len(b.Items) > 0 {
		for i, item := range b.Items {
			title := item.Headline
			if item.Score > 0 {
				title = fmt.Sprintf("%s (score %d)", item.Headline, item.Score)
			}
			desc := strings.Join(item.Bullets, "\n")
			if item.WhyItMatters != "" {
				desc += "\n\n" + item.WhyItMatters
			}
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          fmt.Sprintf("%s/%d", b.Date, i+1),
				Title:       title,
				Link:        &feeds.Link{Href: selfURL},
				Description: strings.TrimSpace(desc),
				Created:     b.GeneratedAt,
			})
		}
	} else {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          b.Date,
			Title:       "Security briefing " + b.Date,
			Link:        &feeds.Link{Href: selfURL},
			Description: b.Narrative,
			Created:     b.GeneratedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return nil, eris.Wrap(err, "digest: render feed")
	}
	return []byte(rss), nil
}
