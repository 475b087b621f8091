package dto

// PostPagination is the listing state shared with the presentation layer.
//
// Results are ordered by first publication date, newest first.
// NextPage is the opaque cursor returned by the content source and is nil iff
// there are no further results. Clients post this value back unchanged to load
// the next page.
type PostPagination struct {
	Results  []PostSummary `json:"results"`
	NextPage *string       `json:"next_page" example:"https://spacetravelling.cdn.prismic.io/api/v2/documents/search?page=2"`
}

// Clone returns a copy that shares no slice storage with p.
func (p PostPagination) Clone() PostPagination {
	out := PostPagination{Results: make([]PostSummary, len(p.Results))}
	copy(out.Results, p.Results)
	if p.NextPage != nil {
		next := *p.NextPage
		out.NextPage = &next
	}
	return out
}

// LoadMoreResponse is the merged listing state plus the preview flag of the
// request. Its results/next_page fields can be posted back as PostPagination.
type LoadMoreResponse struct {
	PostPagination
	Preview bool `json:"preview"`
}
