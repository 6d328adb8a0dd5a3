package feed

import (
	"bytes"
	"time"

	"github.com/eduncan911/podcast"

	"digestcast/internal/episode"
	"digestcast/internal/services"
)

// BuildEpisodeFeed renders one entry per record, newest first. records is not
// reordered in place.
func BuildEpisodeFeed(channel Channel, records []episode.Record, built time.Time) ([]byte, error) {
	ordered := make([]episode.Record, len(records))
	copy(ordered, records)
	SortRecords(ordered)

	p := channel.newPodcast(channel.Name, EpisodeFeedKey, built)
	for _, record := range ordered {
		published, err := recordTime(record)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, stageFeed, "build episode feed", "Record date is malformed", err)
		}
		title := episode.Title(channel.TitleFormat, record.Date)
		long := LongSummary(record.Articles)
		description := long
		if description == "" {
			description = title
		}
		item := podcast.Item{
			Title:       title,
			GUID:        record.FileName,
			Link:        channel.URL(episode.HTMLKey(record.FileName)),
			Description: description,
			ISubtitle:   title,
		}
		item.AddPubDate(&published)
		item.AddEnclosure(channel.URL(episode.AudioKey(record.FileName)), podcast.MP3, record.FileSize)
		if long != "" {
			// AddSummary caps at 4000 runes; the long summary is kept whole.
			item.ISummary = &podcast.ISummary{Text: long}
		}
		if _, err := p.AddItem(item); err != nil {
			return nil, services.Wrap(services.ErrValidation, stageFeed, "build episode feed", record.FileName, err)
		}
	}

	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, services.Wrap(services.ErrValidation, stageFeed, "encode episode feed", "Failed to encode feed", err)
	}
	return buf.Bytes(), nil
}
