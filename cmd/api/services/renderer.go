package services

import (
	"context"
	"encoding/json"
	"fmt"
)

// PageRenderer produces the JSON bodies of the listing and post pages. The
// HTTP handlers and the generate command share it so a snapshot written at
// build time is byte-identical to one generated on demand.
type PageRenderer struct {
	Listing *ListingService
	Posts   *PostService
	Site    SiteInfo
}

func NewPageRenderer(listing *ListingService, posts *PostService, site SiteInfo) *PageRenderer {
	return &PageRenderer{Listing: listing, Posts: posts, Site: site}
}

func (r *PageRenderer) Home(ctx context.Context, preview PreviewContext) ([]byte, error) {
	home, err := r.Listing.FirstPage(ctx, preview)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(home)
	if err != nil {
		return nil, fmt.Errorf("encode home page: %w", err)
	}
	return body, nil
}

func (r *PageRenderer) Post(ctx context.Context, uid string, preview PreviewContext) ([]byte, error) {
	page, err := r.Posts.GetPage(ctx, uid, preview)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("encode post page %s: %w", uid, err)
	}
	return body, nil
}

// Feed walks the whole published listing into an RSS document.
func (r *PageRenderer) Feed(ctx context.Context) ([]byte, error) {
	all, err := r.Listing.All(ctx)
	if err != nil {
		return nil, err
	}
	return BuildFeed(r.Site, all.Results)
}
