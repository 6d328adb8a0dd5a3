package source

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"digestcast/internal/episode"
	"digestcast/internal/services"
)

const (
	headlineSelector  = "div[data-area-id=R1_1] li a span.title"
	paragraphSelector = "#article-content p"
	mediaSelector     = "#article-content div.inner ul.subitems li.subitem a"
)

// HTML scrapes the home page for today's headline list.
type HTML struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewHTML returns a scraper rooted at baseURL.
func NewHTML(baseURL string, client *http.Client, userAgent string) *HTML {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTML{baseURL: strings.TrimRight(baseURL, "/"), client: client, userAgent: userAgent}
}

// FetchToday loads the home page and every linked article. A home page
// failure is returned as an error; article page failures become skips.
func (h *HTML) FetchToday(ctx context.Context) ([]Result, error) {
	base, err := url.Parse(h.baseURL + "/")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageSource, "parse base url", h.baseURL, err)
	}
	home, err := h.document(ctx, base.String())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrTransient, stageSource, "fetch home page", "Failed to load article index", err)
	}

	var results []Result
	home.Find(headlineSelector).Each(func(_ int, title *goquery.Selection) {
		href, ok := title.Closest("a").Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			results = append(results, skip(leadingText(title), errors.New("headline without link")))
			return
		}
		ref, err := base.Parse(href)
		if err != nil {
			results = append(results, skip(href, err))
			return
		}
		results = append(results, Result{Ref: ref.String(), Article: episode.Article{
			URL:   ref.String(),
			Title: leadingText(title),
		}})
	})

	for i := range results {
		if results[i].Skipped() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i] = h.fillArticle(ctx, base, results[i])
	}
	return results, nil
}

func (h *HTML) fillArticle(ctx context.Context, base *url.URL, result Result) Result {
	doc, err := h.document(ctx, result.Article.URL)
	if err != nil {
		return skip(result.Ref, services.Wrap(services.ErrTransient, stageSource, "fetch article", result.Article.URL, err))
	}
	article := result.Article
	article.Body = ParseBody(doc)
	if href, ok := doc.Find(mediaSelector).First().Attr("href"); ok {
		if media, err := base.Parse(strings.TrimSpace(href)); err == nil {
			article.MediaURL = media.String()
		}
	}
	article, err = finish(article)
	if err != nil {
		return skip(result.Ref, err)
	}
	return Result{Ref: result.Ref, Article: article}
}

func (h *HTML) document(ctx context.Context, target string) (*goquery.Document, error) {
	body, err := get(ctx, h.client, h.userAgent, target)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return goquery.NewDocumentFromReader(body)
}

// ParseBody collects the leading text of each article paragraph, one per line.
func ParseBody(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find(paragraphSelector).Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(leadingText(p)); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, episode.ParagraphSeparator)
}

// leadingText returns the text before the first child element of the first
// node in sel.
func leadingText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.TextNode {
			break
		}
		b.WriteString(child.Data)
	}
	return strings.TrimSpace(b.String())
}
