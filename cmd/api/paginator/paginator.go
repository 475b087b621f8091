// Package paginator implements the "load more" state machine of the post listing.
package paginator

import (
	"context"
	"errors"
	"sync"

	"spacetravelling/cmd/api/dto"
)

type State int

const (
	// Initial holds only the first (server rendered) page.
	Initial State = iota
	// Loaded has appended one or more pages.
	Loaded
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// ErrLoadInProgress is returned by LoadMore while another call is outstanding.
var ErrLoadInProgress = errors.New("load more already in progress")

// FetchFunc fetches and normalizes the page behind a next_page cursor.
type FetchFunc func(ctx context.Context, cursor string) (dto.PostPagination, error)

// Paginator owns one listing instance. Results are only ever appended, in the
// order pages were fetched, and are not de-duplicated.
type Paginator struct {
	fetch FetchFunc

	mu      sync.Mutex
	state   State
	current dto.PostPagination
	pages   int
	loading bool
}

// New starts a paginator from the first page.
func New(initial dto.PostPagination, fetch FetchFunc) *Paginator {
	return &Paginator{
		fetch:   fetch,
		state:   Initial,
		current: initial.Clone(),
		pages:   1,
	}
}

// LoadMore fetches the next page and appends it.
//
// It returns false without fetching when there is no next page. On a fetch
// error the paginator is left exactly as it was and the error is returned.
// A call made while another is outstanding returns ErrLoadInProgress.
func (p *Paginator) LoadMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return false, ErrLoadInProgress
	}
	if p.current.NextPage == nil {
		p.mu.Unlock()
		return false, nil
	}
	cursor := *p.current.NextPage
	p.loading = true
	p.mu.Unlock()

	page, err := p.fetch(ctx, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		return false, err
	}
	p.current.Results = append(p.current.Results, page.Results...)
	p.current.NextPage = nil
	if page.NextPage != nil {
		next := *page.NextPage
		p.current.NextPage = &next
	}
	p.pages++
	p.state = Loaded
	return true, nil
}

// Snapshot returns a copy of the current listing.
func (p *Paginator) Snapshot() dto.PostPagination {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

func (p *Paginator) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// HasMore reports whether a next page exists.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.NextPage != nil
}

// Pages is the number of pages merged so far, the first one included.
func (p *Paginator) Pages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages
}
