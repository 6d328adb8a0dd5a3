package episode

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DateLayout renders the record date shown to listeners.
	DateLayout = "01/02/2006"
	// FileNameLayout renders the record identifier and artifact key stem.
	FileNameLayout = "20060102"

	// EpisodesPrefix holds composite audio and record documents.
	EpisodesPrefix = "episodes/"
	// HTMLPrefix holds rendered transcript pages.
	HTMLPrefix = "htmls/"
)

// ParagraphSeparator separates paragraphs inside Article.Body.
const ParagraphSeparator = "\n"

// Article is one source item for the day.
type Article struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	MediaURL   string `json:"media_url"`
	FileName   string `json:"file_name"`
	StartPoint string `json:"start_point,omitempty"`
	Date       string `json:"date,omitempty"`
}

// Record describes one day's digest.
type Record struct {
	Articles []Article `json:"articles"`
	Date     string    `json:"date"`
	FileSize int64     `json:"file_size"`
	FileName string    `json:"file_name"`
}

// NewRecord builds the record for day. Articles are copied so later edits by
// the caller do not leak into the record.
func NewRecord(day time.Time, articles []Article, fileSize int64) Record {
	copied := make([]Article, len(articles))
	copy(copied, articles)
	return Record{
		Articles: copied,
		Date:     day.Format(DateLayout),
		FileSize: fileSize,
		FileName: day.Format(FileNameLayout),
	}
}

// Validate checks the fields a feed entry depends on.
func (r Record) Validate() error {
	if _, err := time.Parse(FileNameLayout, r.FileName); err != nil {
		return fmt.Errorf("record file_name %q: %w", r.FileName, err)
	}
	if strings.TrimSpace(r.Date) == "" {
		return errors.New("record date is empty")
	}
	if r.FileSize < 0 {
		return fmt.Errorf("record file_size %d is negative", r.FileSize)
	}
	seen := make(map[string]struct{}, len(r.Articles))
	for _, article := range r.Articles {
		if _, dup := seen[article.FileName]; dup {
			return fmt.Errorf("record %s: duplicate article file_name %q", r.FileName, article.FileName)
		}
		seen[article.FileName] = struct{}{}
	}
	return nil
}

// Marshal encodes the record. Articles are always emitted as an array.
func (r Record) Marshal() ([]byte, error) {
	if r.Articles == nil {
		r.Articles = []Article{}
	}
	return json.Marshal(r)
}

// Unmarshal decodes a record document.
func Unmarshal(data []byte) (Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, err
	}
	if record.Articles == nil {
		record.Articles = []Article{}
	}
	return record, nil
}

// FileNameFromMediaURL returns the last raw path segment of mediaURL without
// its query string or fragment. Percent escapes are kept as written, and a
// URL ending in a slash has no file name.
func FileNameFromMediaURL(mediaURL string) (string, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return "", errors.New("empty media url")
	}
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return "", fmt.Errorf("parse media url: %w", err)
	}
	escaped := parsed.EscapedPath()
	name := escaped[strings.LastIndex(escaped, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("media url %q has no file name", mediaURL)
	}
	return name, nil
}

// Paragraphs splits the body on ParagraphSeparator, dropping blank lines.
func (a Article) Paragraphs() []string {
	var out []string
	for _, line := range strings.Split(a.Body, ParagraphSeparator) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// AudioKey is the object key of the composite for fileName.
func AudioKey(fileName string) string { return EpisodesPrefix + fileName + ".mp3" }

// RecordKey is the object key of the record document for fileName.
func RecordKey(fileName string) string { return EpisodesPrefix + fileName + ".json" }

// HTMLKey is the object key of the transcript page for fileName.
func HTMLKey(fileName string) string { return HTMLPrefix + fileName + ".html" }

// IsRecordKey reports whether key names a record document.
func IsRecordKey(key string) bool {
	return strings.HasPrefix(key, EpisodesPrefix) && strings.HasSuffix(key, ".json")
}
