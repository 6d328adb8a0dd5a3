// Package source discovers the day's articles.
//
// Two sources exist: HTML scrapes the news site's home page and each linked
// article page; RSS reads a podcast-style feed with audio enclosures. Both
// return one Result per candidate item so malformed items surface as explicit
// skips rather than disappearing.
package source
