package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"spacetravelling/cmd/api/dto"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestReadingTime(t *testing.T) {
	testCases := []struct {
		name    string
		content []dto.ContentBlock
		want    int
	}{
		{
			name:    "empty content",
			content: nil,
			want:    0,
		},
		{
			name:    "blocks without words",
			content: []dto.ContentBlock{{Heading: "  ", Body: []dto.BodyText{{Text: "\n\t"}}}},
			want:    0,
		},
		{
			name: "heading plus five body words",
			content: []dto.ContentBlock{{
				Heading: "Intro",
				Body:    []dto.BodyText{{Text: "one two three four five"}},
			}},
			want: 1,
		},
		{
			name:    "single word has a one minute floor",
			content: []dto.ContentBlock{{Heading: "Hi"}},
			want:    1,
		},
		{
			name:    "just under one and a half minutes rounds down",
			content: []dto.ContentBlock{{Body: []dto.BodyText{{Text: words(299)}}}},
			want:    1,
		},
		{
			name:    "half a minute rounds up",
			content: []dto.ContentBlock{{Body: []dto.BodyText{{Text: words(300)}}}},
			want:    2,
		},
		{
			name: "words are summed across blocks",
			content: []dto.ContentBlock{
				{Heading: words(100), Body: []dto.BodyText{{Text: words(150)}}},
				{Heading: words(50), Body: []dto.BodyText{{Text: words(100)}, {Text: words(100)}}},
			},
			want: 3,
		},
		{
			name:    "angle brackets in prose are words",
			content: []dto.ContentBlock{{Body: []dto.BodyText{{Text: "a<b then " + words(298)}}}},
			want:    2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReadingTime(tc.content))
		})
	}
}

func TestReadingTimeIgnoresWhitespaceStyle(t *testing.T) {
	base := []dto.ContentBlock{{
		Heading: "Como utilizar Hooks",
		Body:    []dto.BodyText{{Text: words(250)}, {Text: "last words here"}},
	}}
	spaced := []dto.ContentBlock{{
		Heading: "  Como\tutilizar \n\n Hooks ",
		Body: []dto.BodyText{
			{Text: strings.ReplaceAll(words(250), " ", " \t\n  ")},
			{Text: "\nlast   words\r\nhere\n"},
		},
	}}
	assert.Equal(t, ReadingTime(base), ReadingTime(spaced))
	assert.Equal(t, 1, ReadingTime(base))
}

func TestFlattenBodyKeepsComparisonsAndEntities(t *testing.T) {
	got := FlattenBody([]dto.BodyText{
		{Text: "if a<b then c is true and x equals y"},
		{Text: "for i<n && j>0 use Tom &amp; Jerry"},
	})
	assert.Equal(t, "if a<b then c is true and x equals y\nfor i<n && j>0 use Tom &amp; Jerry", got)
	assert.Len(t, strings.Fields(got), 18)
}

func TestFlattenBodySeparatesEntries(t *testing.T) {
	got := FlattenBody([]dto.BodyText{{Text: "end"}, {Text: "start"}})
	assert.Equal(t, "end\nstart", got)
	assert.Len(t, strings.Fields(got), 2)
}
