// Package feed rebuilds the public podcast feeds from episode history.
//
// The episode feed (feed.rss) carries one entry per stored record, newest
// first, with an HTML long summary linking every article. The article feed
// (feed-article.rss) flattens the same history into individual articles,
// deduplicated by audio file name and capped at a configured count. Both are
// rebuilt from scratch on every run and only published once fully built.
package feed
