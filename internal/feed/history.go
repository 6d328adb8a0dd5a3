package feed

import (
	"context"
	"fmt"
	"sort"

	"digestcast/internal/episode"
	"digestcast/internal/objectstore"
	"digestcast/internal/services"
)

const stageFeed = "feed"

// LoadHistory fetches stored episode records, newest first. A positive limit
// keeps only the newest limit records by key. Any retrieval or decode failure
// aborts the load.
func LoadHistory(ctx context.Context, store objectstore.Store, limit int) ([]episode.Record, error) {
	keys, err := store.List(ctx, episode.EpisodesPrefix)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, stageFeed, "list records", "Failed to list episode records", err)
	}
	recordKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		if episode.IsRecordKey(key) {
			recordKeys = append(recordKeys, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(recordKeys)))
	if limit > 0 && len(recordKeys) > limit {
		recordKeys = recordKeys[:limit]
	}

	records := make([]episode.Record, 0, len(recordKeys))
	for _, key := range recordKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := store.Get(ctx, key)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, stageFeed, "get record", fmt.Sprintf("Failed to fetch %s", key), err)
		}
		record, err := episode.Unmarshal(data)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, stageFeed, "decode record", fmt.Sprintf("Malformed record %s", key), err)
		}
		records = append(records, record)
	}
	SortRecords(records)
	return records, nil
}

// SortRecords orders records by file name, newest first.
func SortRecords(records []episode.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FileName > records[j].FileName
	})
}
