package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/eduncan911/podcast"

	"digestcast/internal/config"
	"digestcast/internal/episode"
)

const (
	// EpisodeFeedKey is the object key of the episode feed.
	EpisodeFeedKey = "feed.rss"
	// ArticleFeedKey is the object key of the article feed.
	ArticleFeedKey = "feed-article.rss"
)

// Channel is the static podcast metadata.
type Channel struct {
	BaseURL         string
	Name            string
	ArticleFeedName string
	Description     string
	Language        string
	Category        string
	Subcategory     string
	TitleFormat     string
}

// ChannelFromConfig maps the [feed] section.
func ChannelFromConfig(cfg config.Feed) Channel {
	return Channel{
		BaseURL:         cfg.BaseURL,
		Name:            cfg.Name,
		ArticleFeedName: cfg.ArticleFeedName,
		Description:     cfg.Description,
		Language:        cfg.Language,
		Category:        cfg.Category,
		Subcategory:     cfg.Subcategory,
		TitleFormat:     cfg.TitleFormat,
	}
}

// URL joins key onto the public base URL.
func (c Channel) URL(key string) string {
	base := c.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(key, "/")
}

func (c Channel) newPodcast(title, feedKey string, built time.Time) *podcast.Podcast {
	built = built.UTC()
	p := podcast.New(title, c.URL(""), c.Description, &built, &built)
	p.Language = c.Language
	p.IExplicit = "no"
	p.IComplete = "no"
	p.AddAtomLink(c.URL(feedKey))
	if c.Category != "" {
		var subs []string
		if c.Subcategory != "" {
			subs = []string{c.Subcategory}
		}
		p.AddCategory(c.Category, subs)
	}
	return &p
}

// recordTime parses a record date, falling back to its file name.
func recordTime(record episode.Record) (time.Time, error) {
	if t, err := time.Parse(episode.DateLayout, record.Date); err == nil {
		return t, nil
	}
	t, err := time.Parse(episode.FileNameLayout, record.FileName)
	if err != nil {
		return time.Time{}, fmt.Errorf("record %q: unparseable date %q", record.FileName, record.Date)
	}
	return t, nil
}
