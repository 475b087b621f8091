package dto

// PostSummary is one row of the post listing.
// Dates are the raw timestamps returned by the content source; formatting is
// left to the presentation layer.
type PostSummary struct {
	UID                  string  `json:"uid" example:"como-utilizar-hooks"`
	FirstPublicationDate *string `json:"first_publication_date" example:"2021-03-25T19:25:28+0000"`
	Title                string  `json:"title" example:"Como utilizar Hooks"`
	Subtitle             *string `json:"subtitle" example:"Pensando em sincronização em vez de ciclos de vida."`
	Author               *string `json:"author" example:"Joseph Oliveira"`
}

// Post is the full post view model.
// Content keeps the authorial block order and is never re-sorted.
type Post struct {
	UID                  string         `json:"uid"`
	FirstPublicationDate *string        `json:"first_publication_date"`
	LastPublicationDate  *string        `json:"last_publication_date"`
	Title                string         `json:"title"`
	Subtitle             *string        `json:"subtitle"`
	Author               *string        `json:"author"`
	Banner               Banner         `json:"banner"`
	Content              []ContentBlock `json:"content"`
}

type Banner struct {
	URL string `json:"url" example:"https://images.prismic.io/spacetravelling/banner.png"`
}

type ContentBlock struct {
	Heading string     `json:"heading"`
	Body    []BodyText `json:"body"`
}

// BodyText carries the plain text of one rich-text entry. Formatting spans are
// dropped by the normalizer.
type BodyText struct {
	Text string `json:"text"`
}

// AdjacentPost links to the chronologically previous/next post.
// It is only ever used as *AdjacentPost: nil means there is no such post.
type AdjacentPost struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
}
