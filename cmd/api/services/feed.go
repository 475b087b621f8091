package services

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"spacetravelling/cmd/api/dto"
)

// publicationLayout 는 content API 가 내려주는 날짜 형식이다. (2021-03-25T19:25:28+0000)
const publicationLayout = "2006-01-02T15:04:05-0700"

// SiteInfo describes the channel of the RSS feed.
type SiteInfo struct {
	Name    string
	BaseURL string
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description string  `xml:"description,omitempty"`
	Author      string  `xml:"author,omitempty"`
	PubDate     string  `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// BuildFeed renders posts as an RSS 2.0 document, newest first as given.
// Dates that do not parse are left out of the item rather than guessed.
func BuildFeed(site SiteInfo, posts []dto.PostSummary) ([]byte, error) {
	base := strings.TrimRight(site.BaseURL, "/")
	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Name,
			Link:        base + "/",
			Description: site.Name,
			Items:       make([]rssItem, 0, len(posts)),
		},
	}

	for _, p := range posts {
		link := base + "/post/" + p.UID
		item := rssItem{
			Title: p.Title,
			Link:  link,
			GUID:  rssGUID{IsPermaLink: true, Value: link},
		}
		if p.Subtitle != nil {
			item.Description = *p.Subtitle
		}
		if p.Author != nil {
			item.Author = *p.Author
		}
		if p.FirstPublicationDate != nil {
			if t, err := time.Parse(publicationLayout, *p.FirstPublicationDate); err == nil {
				item.PubDate = t.UTC().Format(time.RFC1123Z)
			}
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
