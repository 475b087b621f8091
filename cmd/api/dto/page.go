package dto

// HomePage is the listing page view model.
type HomePage struct {
	PostsPagination PostPagination `json:"postsPagination"`
	Preview         bool           `json:"preview"`
}

// PostPage is the post detail view model.
type PostPage struct {
	Post        Post           `json:"post"`
	ReadingTime int            `json:"reading_time" example:"4"`
	PrevPost    *AdjacentPost  `json:"prevPost"`
	NextPost    *AdjacentPost  `json:"nextPost"`
	Preview     bool           `json:"preview"`
	Comments    *CommentsEmbed `json:"comments"`
}

// CommentsEmbed describes the comment widget injection: the script element is
// appended to the DOM node with id AnchorID.
type CommentsEmbed struct {
	AnchorID string `json:"anchor_id" example:"inject-comments-for-uterances"`
	Script   string `json:"script"`
}

// Fallback values of a path declaration.
const (
	FallbackBlocking = "blocking"
)

// PathParams identifies one pre-generated page.
type PathParams struct {
	Slug string `json:"slug"`
}

// PathsDeclaration declares which paths of a page are generated at build time
// and how stale content is revalidated.
type PathsDeclaration struct {
	Page              string       `json:"page" example:"/post/[slug]"`
	Paths             []PathParams `json:"paths"`
	Fallback          string       `json:"fallback" example:"blocking"`
	RevalidateSeconds int          `json:"revalidate" example:"1800"`
}

// PathsResponse groups the declarations of every page.
type PathsResponse struct {
	Pages []PathsDeclaration `json:"pages"`
}

// RevalidateRequest is the content webhook payload. An empty UIDs list
// invalidates every page.
type RevalidateRequest struct {
	UIDs []string `json:"uids" example:"como-utilizar-hooks"`
}
