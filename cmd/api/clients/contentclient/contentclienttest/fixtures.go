package contentclienttest

import (
	"encoding/json"
	"fmt"

	"spacetravelling/cmd/api/clients/contentclient"
)

// PostData returns a complete raw "posts" data payload.
func PostData(title string) map[string]any {
	return map[string]any{
		"title":    title,
		"subtitle": "Subtitle of " + title,
		"author":   "Joseph Oliveira",
		"banner":   map[string]any{"url": "https://images.prismic.io/spacetravelling/" + title + ".png"},
		"content": []any{
			map[string]any{
				"heading": "Intro",
				"body": []any{
					map[string]any{"type": "paragraph", "text": "one two three four five", "spans": []any{}},
				},
			},
		},
	}
}

// Post builds a published "posts" document. data is JSON encoded as-is.
func Post(id, uid, firstPublication string, data map[string]any) contentclient.Document {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(fmt.Sprintf("contentclienttest: marshal data: %v", err))
	}
	u := uid
	fp := firstPublication
	return contentclient.Document{
		ID:                   id,
		UID:                  &u,
		Type:                 "posts",
		FirstPublicationDate: &fp,
		Data:                 raw,
	}
}

// Timeline returns n published posts, post-1 being the oldest.
func Timeline(n int) []contentclient.Document {
	docs := make([]contentclient.Document, 0, n)
	for i := 1; i <= n; i++ {
		uid := fmt.Sprintf("post-%d", i)
		docs = append(docs, Post(
			fmt.Sprintf("ID%d", i),
			uid,
			fmt.Sprintf("2021-03-%02dT19:25:28+0000", i),
			PostData(uid),
		))
	}
	return docs
}
