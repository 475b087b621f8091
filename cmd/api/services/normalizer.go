package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/dto"
)

// ErrMalformedDocument is returned when a structurally required field is absent.
// The page being generated must fail rather than publish partial content.
var ErrMalformedDocument = errors.New("malformed document")

// rawPostData is the "data" object of a posts document. Fields not listed here
// are dropped.
type rawPostData struct {
	Title    *textField       `json:"title"`
	Subtitle *textField       `json:"subtitle"`
	Author   *textField       `json:"author"`
	Banner   *rawBanner       `json:"banner"`
	Content  *[]rawContentBlk `json:"content"`
}

type rawBanner struct {
	URL *string `json:"url"`
}

type rawContentBlk struct {
	Heading *textField  `json:"heading"`
	Body    []rawRichTx `json:"body"`
}

// rawRichTx is one rich-text node ({type, text, spans}).
type rawRichTx struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// textField accepts either a plain string or a rich-text array. Older documents
// store title/heading as rich text; newer ones as key text.
type textField struct {
	value string
}

func (t *textField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &t.value)
	}
	var nodes []rawRichTx
	if err := json.Unmarshal(b, &nodes); err != nil {
		return fmt.Errorf("expected string or rich text: %w", err)
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, n.Text)
	}
	t.value = strings.Join(parts, "\n")
	return nil
}

func decodeData(doc contentclient.Document) (rawPostData, error) {
	var data rawPostData
	if len(doc.Data) == 0 {
		return data, fmt.Errorf("%w: document %s has no data", ErrMalformedDocument, doc.ID)
	}
	if err := json.Unmarshal(doc.Data, &data); err != nil {
		return data, fmt.Errorf("%w: document %s: %v", ErrMalformedDocument, doc.ID, err)
	}
	return data, nil
}

func missing(doc contentclient.Document, field string) error {
	return fmt.Errorf("%w: document %s: missing %s", ErrMalformedDocument, doc.ID, field)
}

// NormalizeSummary maps a raw document to a listing row.
func NormalizeSummary(doc contentclient.Document) (dto.PostSummary, error) {
	if doc.UID == nil || *doc.UID == "" {
		return dto.PostSummary{}, missing(doc, "uid")
	}
	data, err := decodeData(doc)
	if err != nil {
		return dto.PostSummary{}, err
	}
	if data.Title == nil {
		return dto.PostSummary{}, missing(doc, "data.title")
	}
	if data.Content == nil {
		return dto.PostSummary{}, missing(doc, "data.content")
	}
	return dto.PostSummary{
		UID:                  *doc.UID,
		FirstPublicationDate: doc.FirstPublicationDate,
		Title:                data.Title.value,
		Subtitle:             optionalText(data.Subtitle),
		Author:               optionalText(data.Author),
	}, nil
}

// NormalizePost maps a raw document to the full post view model. Block and body
// order is kept as stored.
func NormalizePost(doc contentclient.Document) (dto.Post, error) {
	summary, err := NormalizeSummary(doc)
	if err != nil {
		return dto.Post{}, err
	}
	data, err := decodeData(doc)
	if err != nil {
		return dto.Post{}, err
	}
	if data.Banner == nil || data.Banner.URL == nil || *data.Banner.URL == "" {
		return dto.Post{}, missing(doc, "data.banner.url")
	}

	content := make([]dto.ContentBlock, 0, len(*data.Content))
	for _, blk := range *data.Content {
		heading := ""
		if blk.Heading != nil {
			heading = blk.Heading.value
		}
		body := make([]dto.BodyText, 0, len(blk.Body))
		for _, n := range blk.Body {
			body = append(body, dto.BodyText{Text: n.Text})
		}
		content = append(content, dto.ContentBlock{Heading: heading, Body: body})
	}

	return dto.Post{
		UID:                  summary.UID,
		FirstPublicationDate: summary.FirstPublicationDate,
		LastPublicationDate:  doc.LastPublicationDate,
		Title:                summary.Title,
		Subtitle:             summary.Subtitle,
		Author:               summary.Author,
		Banner:               dto.Banner{URL: *data.Banner.URL},
		Content:              content,
	}, nil
}

// NormalizeSummaries normalizes a result page, failing on the first malformed row.
func NormalizeSummaries(docs []contentclient.Document) ([]dto.PostSummary, error) {
	out := make([]dto.PostSummary, 0, len(docs))
	for _, d := range docs {
		s, err := NormalizeSummary(d)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DenormalizePost writes a view model back in the raw document shape, using
// plain strings for text fields and paragraph nodes for body entries.
func DenormalizePost(id, typeTag string, p dto.Post) (contentclient.Document, error) {
	type outBlock struct {
		Heading string      `json:"heading"`
		Body    []rawRichTx `json:"body"`
	}
	data := map[string]any{
		"title":  p.Title,
		"banner": map[string]string{"url": p.Banner.URL},
	}
	if p.Subtitle != nil {
		data["subtitle"] = *p.Subtitle
	}
	if p.Author != nil {
		data["author"] = *p.Author
	}
	blocks := make([]outBlock, 0, len(p.Content))
	for _, blk := range p.Content {
		body := make([]rawRichTx, 0, len(blk.Body))
		for _, b := range blk.Body {
			body = append(body, rawRichTx{Type: "paragraph", Text: b.Text})
		}
		blocks = append(blocks, outBlock{Heading: blk.Heading, Body: body})
	}
	data["content"] = blocks

	raw, err := json.Marshal(data)
	if err != nil {
		return contentclient.Document{}, fmt.Errorf("encode data: %w", err)
	}
	uid := p.UID
	return contentclient.Document{
		ID:                   id,
		UID:                  &uid,
		Type:                 typeTag,
		FirstPublicationDate: p.FirstPublicationDate,
		LastPublicationDate:  p.LastPublicationDate,
		Data:                 raw,
	}, nil
}

func optionalText(t *textField) *string {
	if t == nil || t.value == "" {
		return nil
	}
	v := t.value
	return &v
}
