package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"digestcast/internal/episode"
	"digestcast/internal/services"
)

// RSS reads a feed whose items carry audio enclosures.
type RSS struct {
	feedURL string
	parser  *gofeed.Parser
	now     func() time.Time
}

// NewRSS returns a feed source. Only items published on the current local
// day are returned; undated items are always kept.
func NewRSS(feedURL string, client *http.Client, userAgent string, now func() time.Time) *RSS {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	if now == nil {
		now = time.Now
	}
	return &RSS{feedURL: feedURL, parser: parser, now: now}
}

// FetchToday parses the feed and maps today's items.
func (r *RSS) FetchToday(ctx context.Context) ([]Result, error) {
	feed, err := r.parser.ParseURLWithContext(r.feedURL, ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrTransient, stageSource, "fetch feed", r.feedURL, err)
	}
	return r.results(feed), nil
}

func (r *RSS) results(feed *gofeed.Feed) []Result {
	today := r.now()
	y, m, d := today.Date()
	results := make([]Result, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.PublishedParsed != nil {
			py, pm, pd := item.PublishedParsed.In(today.Location()).Date()
			if py != y || pm != m || pd != d {
				continue
			}
		}
		article := episode.Article{
			URL:      item.Link,
			Title:    strings.TrimSpace(item.Title),
			Body:     itemBody(item),
			MediaURL: audioEnclosure(item),
		}
		ref := item.Link
		if ref == "" {
			ref = item.GUID
		}
		article, err := finish(article)
		if err != nil {
			results = append(results, skip(ref, err))
			continue
		}
		results = append(results, Result{Ref: ref, Article: article})
	}
	return results
}

func audioEnclosure(item *gofeed.Item) string {
	var fallback string
	for _, enc := range item.Enclosures {
		if enc == nil || strings.TrimSpace(enc.URL) == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") {
			return strings.TrimSpace(enc.URL)
		}
		if fallback == "" {
			fallback = strings.TrimSpace(enc.URL)
		}
	}
	return fallback
}

// itemBody converts the item's HTML content into newline separated paragraphs.
func itemBody(item *gofeed.Item) string {
	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}
	if strings.TrimSpace(content) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}
	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(paragraphs, episode.ParagraphSeparator)
}
