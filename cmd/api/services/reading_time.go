package services

import (
	"strings"

	"spacetravelling/cmd/api/dto"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// ReadingTime estimates the minutes needed to read content.
//
// Every block contributes the words of its heading and of its flattened body.
// The total is divided by WordsPerMinute and rounded half up, with a minimum
// of one minute for any content that has at least one word.
func ReadingTime(content []dto.ContentBlock) int {
	words := 0
	for _, blk := range content {
		words += len(strings.Fields(blk.Heading))
		words += len(strings.Fields(FlattenBody(blk.Body)))
	}
	if words == 0 {
		return 0
	}
	minutes := (words + WordsPerMinute/2) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// FlattenBody joins the text of the body entries with newlines. Entries are
// already plain text, so '<' and '&' are ordinary characters here.
func FlattenBody(body []dto.BodyText) string {
	parts := make([]string, 0, len(body))
	for _, b := range body {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}
