package services

import (
	"context"
	"fmt"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/dto"
	"spacetravelling/cmd/api/paginator"
)

// ListingService builds the post listing and its "load more" pages.
type ListingService struct {
	source   DocumentSource
	typeTag  string
	pageSize int
}

func NewListingService(source DocumentSource, typeTag string, pageSize int) *ListingService {
	return &ListingService{source: source, typeTag: typeTag, pageSize: pageSize}
}

// FirstPage returns the home page with the newest posts first.
func (s *ListingService) FirstPage(ctx context.Context, preview PreviewContext) (dto.HomePage, error) {
	resp, err := s.source.QueryByType(ctx, s.typeTag, contentclient.QueryOptions{
		PageSize:  s.pageSize,
		Ref:       preview.DocumentRef(),
		Orderings: []contentclient.Ordering{contentclient.FirstPublicationDesc},
	})
	if err != nil {
		return dto.HomePage{}, err
	}
	pagination, err := toPagination(resp)
	if err != nil {
		return dto.HomePage{}, err
	}
	return dto.HomePage{PostsPagination: pagination, Preview: preview.Flag()}, nil
}

// Fetch follows a next_page cursor and normalizes the page. It is the
// paginator.FetchFunc of this listing.
func (s *ListingService) Fetch(ctx context.Context, cursor string) (dto.PostPagination, error) {
	resp, err := s.source.FetchPage(ctx, cursor)
	if err != nil {
		return dto.PostPagination{}, err
	}
	return toPagination(resp)
}

// LoadMore applies one "load more" transition to state and returns the merged
// pagination. When state has no next page it is returned unchanged.
func (s *ListingService) LoadMore(ctx context.Context, state dto.PostPagination) (dto.PostPagination, error) {
	p := paginator.New(state, s.Fetch)
	if _, err := p.LoadMore(ctx); err != nil {
		return dto.PostPagination{}, err
	}
	return p.Snapshot(), nil
}

// All walks the whole listing from the first page through every cursor.
func (s *ListingService) All(ctx context.Context) (dto.PostPagination, error) {
	home, err := s.FirstPage(ctx, Published)
	if err != nil {
		return dto.PostPagination{}, err
	}
	p := paginator.New(home.PostsPagination, s.Fetch)
	for p.HasMore() {
		if _, err := p.LoadMore(ctx); err != nil {
			return dto.PostPagination{}, fmt.Errorf("load listing page %d: %w", p.Pages()+1, err)
		}
	}
	return p.Snapshot(), nil
}

func toPagination(resp contentclient.Response) (dto.PostPagination, error) {
	results, err := NormalizeSummaries(resp.Results)
	if err != nil {
		return dto.PostPagination{}, err
	}
	return dto.PostPagination{Results: results, NextPage: resp.NextPage}, nil
}
