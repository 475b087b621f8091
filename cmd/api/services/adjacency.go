package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/dto"
)

// DocumentSource is the part of the content client used by the page services.
type DocumentSource interface {
	QueryByType(ctx context.Context, typeTag string, opts contentclient.QueryOptions) (contentclient.Response, error)
	GetByUID(ctx context.Context, typeTag, uid string, opts contentclient.QueryOptions) (contentclient.Document, error)
	GetByID(ctx context.Context, id, ref string) (contentclient.Document, error)
	FetchPage(ctx context.Context, cursor string) (contentclient.Response, error)
	QueryAllByType(ctx context.Context, typeTag string, opts contentclient.QueryOptions) ([]contentclient.Document, error)
}

// AdjacencyResolver finds the posts published right before and after a document.
type AdjacencyResolver struct {
	source  DocumentSource
	typeTag string
}

func NewAdjacencyResolver(source DocumentSource, typeTag string) *AdjacencyResolver {
	return &AdjacencyResolver{source: source, typeTag: typeTag}
}

// Resolve returns the predecessor (older) and successor (newer) of documentID on
// the published timeline. A nil result means there is no post on that side.
// Query errors are returned as-is and never turned into "no post".
//
// 두 쿼리는 서로 독립이라 동시에 실행한다. 항상 published(master) ref 를 사용한다.
func (r *AdjacencyResolver) Resolve(ctx context.Context, documentID string) (prev, next *dto.AdjacentPost, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prev, err = r.neighbour(gctx, documentID, contentclient.FirstPublicationDesc)
		if err != nil {
			return fmt.Errorf("resolve previous post: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		next, err = r.neighbour(gctx, documentID, contentclient.FirstPublicationAsc)
		if err != nil {
			return fmt.Errorf("resolve next post: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (r *AdjacencyResolver) neighbour(ctx context.Context, documentID string, order contentclient.Ordering) (*dto.AdjacentPost, error) {
	resp, err := r.source.QueryByType(ctx, r.typeTag, contentclient.QueryOptions{
		PageSize:  1,
		After:     documentID,
		Orderings: []contentclient.Ordering{order},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	s, err := NormalizeSummary(resp.Results[0])
	if err != nil {
		return nil, err
	}
	return &dto.AdjacentPost{UID: s.UID, Title: s.Title}, nil
}
