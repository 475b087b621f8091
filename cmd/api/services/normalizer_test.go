package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/clients/contentclient/contentclienttest"
	"spacetravelling/cmd/api/dto"
)

func docWith(t *testing.T, mutate func(data map[string]any)) contentclient.Document {
	t.Helper()
	data := contentclienttest.PostData("como-utilizar-hooks")
	if mutate != nil {
		mutate(data)
	}
	return contentclienttest.Post("YF1", "como-utilizar-hooks", "2021-03-25T19:25:28+0000", data)
}

func TestNormalizePost(t *testing.T) {
	doc := docWith(t, func(data map[string]any) {
		data["unknown_field"] = map[string]any{"nested": true}
	})
	last := "2021-03-26T10:00:00+0000"
	doc.LastPublicationDate = &last

	post, err := NormalizePost(doc)
	require.NoError(t, err)

	assert.Equal(t, "como-utilizar-hooks", post.UID)
	assert.Equal(t, "como-utilizar-hooks", post.Title)
	require.NotNil(t, post.Subtitle)
	assert.Equal(t, "Subtitle of como-utilizar-hooks", *post.Subtitle)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Joseph Oliveira", *post.Author)
	require.NotNil(t, post.FirstPublicationDate)
	assert.Equal(t, "2021-03-25T19:25:28+0000", *post.FirstPublicationDate, "dates pass through unmodified")
	assert.Equal(t, &last, post.LastPublicationDate)
	assert.Equal(t, "https://images.prismic.io/spacetravelling/como-utilizar-hooks.png", post.Banner.URL)
	assert.Equal(t, []dto.ContentBlock{{
		Heading: "Intro",
		Body:    []dto.BodyText{{Text: "one two three four five"}},
	}}, post.Content)
}

func TestNormalizePostOptionalFieldsAreNil(t *testing.T) {
	doc := docWith(t, func(data map[string]any) {
		delete(data, "subtitle")
		data["author"] = nil
	})
	doc.FirstPublicationDate = nil

	post, err := NormalizePost(doc)
	require.NoError(t, err)
	assert.Nil(t, post.Subtitle)
	assert.Nil(t, post.Author)
	assert.Nil(t, post.FirstPublicationDate)
	assert.Nil(t, post.LastPublicationDate)
}

func TestNormalizePostRequiredFields(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(data map[string]any)
		doc    func(d *contentclient.Document)
	}{
		{name: "missing banner url", mutate: func(data map[string]any) { data["banner"] = map[string]any{} }},
		{name: "missing banner", mutate: func(data map[string]any) { delete(data, "banner") }},
		{name: "missing title", mutate: func(data map[string]any) { delete(data, "title") }},
		{name: "null content", mutate: func(data map[string]any) { data["content"] = nil }},
		{name: "missing content", mutate: func(data map[string]any) { delete(data, "content") }},
		{name: "missing uid", doc: func(d *contentclient.Document) { d.UID = nil }},
		{name: "missing data", doc: func(d *contentclient.Document) { d.Data = nil }},
		{name: "content is not an array", mutate: func(data map[string]any) { data["content"] = "text" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := docWith(t, tc.mutate)
			if tc.doc != nil {
				tc.doc(&doc)
			}
			_, err := NormalizePost(doc)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestNormalizeSummaryDoesNotNeedBanner(t *testing.T) {
	doc := docWith(t, func(data map[string]any) { delete(data, "banner") })

	s, err := NormalizeSummary(doc)
	require.NoError(t, err)
	assert.Equal(t, "como-utilizar-hooks", s.UID)
}

func TestNormalizeAcceptsRichTextFields(t *testing.T) {
	doc := docWith(t, func(data map[string]any) {
		data["title"] = []any{map[string]any{"type": "heading1", "text": "Como utilizar Hooks", "spans": []any{}}}
		data["content"] = []any{
			map[string]any{
				"heading": []any{map[string]any{"type": "heading2", "text": "Proin et varius"}},
				"body": []any{
					map[string]any{"type": "paragraph", "text": "first"},
					map[string]any{"type": "list-item", "text": "second"},
				},
			},
			map[string]any{"heading": "Cras laoreet", "body": []any{}},
		}
	})

	post, err := NormalizePost(doc)
	require.NoError(t, err)
	assert.Equal(t, "Como utilizar Hooks", post.Title)
	require.Len(t, post.Content, 2)
	assert.Equal(t, "Proin et varius", post.Content[0].Heading)
	assert.Equal(t, []dto.BodyText{{Text: "first"}, {Text: "second"}}, post.Content[0].Body)
	assert.Equal(t, "Cras laoreet", post.Content[1].Heading)
	assert.Empty(t, post.Content[1].Body)
}

func TestDenormalizeRoundTrip(t *testing.T) {
	doc := docWith(t, func(data map[string]any) {
		data["content"] = []any{
			map[string]any{"heading": "Z last alphabetically", "body": []any{map[string]any{"text": "b"}, map[string]any{"text": "a"}}},
			map[string]any{"heading": "A first alphabetically", "body": []any{map[string]any{"text": "c"}}},
		}
	})

	post, err := NormalizePost(doc)
	require.NoError(t, err)

	raw, err := DenormalizePost(doc.ID, doc.Type, post)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, raw.ID)
	assert.Equal(t, *doc.UID, *raw.UID)

	var orig, back map[string]any
	require.NoError(t, json.Unmarshal(doc.Data, &orig))
	require.NoError(t, json.Unmarshal(raw.Data, &back))
	assert.Equal(t, orig["title"], back["title"])
	assert.Equal(t, orig["author"], back["author"])

	again, err := NormalizePost(raw)
	require.NoError(t, err)
	assert.Equal(t, post, again)
	assert.Equal(t, "Z last alphabetically", again.Content[0].Heading)
	assert.Equal(t, []dto.BodyText{{Text: "b"}, {Text: "a"}}, again.Content[0].Body)
}
