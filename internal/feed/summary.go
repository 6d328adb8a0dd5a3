package feed

import (
	"strings"

	"digestcast/internal/episode"
)

// SummaryBodyLimit is the number of body characters quoted per article.
const SummaryBodyLimit = 200

// LongSummary renders the HTML episode summary in stored article order.
// Values are inserted verbatim.
func LongSummary(articles []episode.Article) string {
	var b strings.Builder
	for _, article := range articles {
		if article.StartPoint != "" {
			b.WriteString("<h2>[")
			b.WriteString(article.StartPoint)
			b.WriteString("]</h2>")
		}
		b.WriteString("<a href='")
		b.WriteString(article.URL)
		b.WriteString("'>")
		b.WriteString(article.Title)
		b.WriteString("</a><p>")
		b.WriteString(truncateRunes(article.Body, SummaryBodyLimit))
		b.WriteString("</p>--------<br /><br />")
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
