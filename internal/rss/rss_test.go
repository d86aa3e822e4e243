package rss

import (
	"bytes"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_ParsesAsRSS(t *testing.T) {
	built := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	doc := New("new stories", "https://example.com", "latest", built, []Item{
		{
			Title:       "Show HN: a thing & more",
			Link:        "https://example.com/thing",
			Description: "example.com",
			PubDate:     FormatDate(built.Add(-time.Hour)),
			GUID:        GUID{Value: "https://news.ycombinator.com/item?id=1", IsPermaLink: true},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("<?xml")))

	feed, err := gofeed.NewParser().Parse(&buf)
	require.NoError(t, err)

	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "2.0", feed.FeedVersion)
	assert.Equal(t, "new stories", feed.Title)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Show HN: a thing & more", feed.Items[0].Title)
	assert.Equal(t, "https://example.com/thing", feed.Items[0].Link)
	assert.Equal(t, "https://news.ycombinator.com/item?id=1", feed.Items[0].GUID)
	require.NotNil(t, feed.Items[0].PublishedParsed)
	assert.True(t, feed.Items[0].PublishedParsed.Equal(built.Add(-time.Hour)))
}

func TestFormatDate(t *testing.T) {
	assert.Empty(t, FormatDate(time.Time{}))
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 +0000", FormatDate(time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))))
}
