package services

import (
	"context"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/dto"
)

const (
	ListingPage = "/"
	PostPage    = "/post/[slug]"
)

// PathsService declares which pages are generated ahead of time.
type PathsService struct {
	source         DocumentSource
	typeTag        string
	listingSeconds int
	postSeconds    int
}

func NewPathsService(source DocumentSource, typeTag string, listingSeconds, postSeconds int) *PathsService {
	return &PathsService{source: source, typeTag: typeTag, listingSeconds: listingSeconds, postSeconds: postSeconds}
}

// Declare returns the path declaration of every page. The listing precomputes
// nothing; posts declare every uid known to the published snapshot. Unknown
// slugs are generated on demand (blocking fallback), never 404 up front.
func (s *PathsService) Declare(ctx context.Context) (dto.PathsResponse, error) {
	docs, err := s.source.QueryAllByType(ctx, s.typeTag, contentclient.QueryOptions{})
	if err != nil {
		return dto.PathsResponse{}, err
	}
	paths := make([]dto.PathParams, 0, len(docs))
	for _, d := range docs {
		if d.UID == nil || *d.UID == "" {
			continue
		}
		paths = append(paths, dto.PathParams{Slug: *d.UID})
	}
	return dto.PathsResponse{Pages: []dto.PathsDeclaration{
		{Page: ListingPage, Paths: []dto.PathParams{}, Fallback: dto.FallbackBlocking, RevalidateSeconds: s.listingSeconds},
		{Page: PostPage, Paths: paths, Fallback: dto.FallbackBlocking, RevalidateSeconds: s.postSeconds},
	}}, nil
}

// PostSlugs returns just the declared post slugs.
func (s *PathsService) PostSlugs(ctx context.Context) ([]string, error) {
	decl, err := s.Declare(ctx)
	if err != nil {
		return nil, err
	}
	var slugs []string
	for _, p := range decl.Pages {
		if p.Page != PostPage {
			continue
		}
		for _, pp := range p.Paths {
			slugs = append(slugs, pp.Slug)
		}
	}
	return slugs, nil
}
