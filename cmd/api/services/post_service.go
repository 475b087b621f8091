package services

import (
	"context"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/dto"
)

// PostService assembles the post detail page.
//
// - source: content API 에서 문서를 조회한다 (document fetch 는 preview ref, 인접 글은 published ref).
// - comments: 설정된 경우 댓글 위젯 descriptor 를 붙인다.
type PostService struct {
	source    DocumentSource
	typeTag   string
	adjacency *AdjacencyResolver
	comments  *dto.CommentsEmbed
}

func NewPostService(source DocumentSource, typeTag string, comments *dto.CommentsEmbed) *PostService {
	return &PostService{
		source:    source,
		typeTag:   typeTag,
		adjacency: NewAdjacencyResolver(source, typeTag),
		comments:  comments,
	}
}

// GetPage builds the post page for uid.
//
// Order: document fetch, then both adjacency queries concurrently, then
// normalization and reading time. contentclient.ErrNotFound is returned as-is.
func (s *PostService) GetPage(ctx context.Context, uid string, preview PreviewContext) (dto.PostPage, error) {
	doc, err := s.source.GetByUID(ctx, s.typeTag, uid, contentclient.QueryOptions{Ref: preview.DocumentRef()})
	if err != nil {
		return dto.PostPage{}, err
	}

	prev, next, err := s.adjacency.Resolve(ctx, doc.ID)
	if err != nil {
		return dto.PostPage{}, err
	}

	post, err := NormalizePost(doc)
	if err != nil {
		return dto.PostPage{}, err
	}

	return dto.PostPage{
		Post:        post,
		ReadingTime: ReadingTime(post.Content),
		PrevPost:    prev,
		NextPost:    next,
		Preview:     preview.Flag(),
		Comments:    s.comments,
	}, nil
}

// ResolvePreviewUID returns the uid of documentID under ref, used to redirect a
// preview link to its post page.
func (s *PostService) ResolvePreviewUID(ctx context.Context, documentID, ref string) (string, error) {
	doc, err := s.source.GetByID(ctx, documentID, ref)
	if err != nil {
		return "", err
	}
	if doc.UID == nil || *doc.UID == "" {
		return "", missing(doc, "uid")
	}
	return *doc.UID, nil
}
