package services

// PreviewContext carries the preview signal of one request. It is built per
// request and passed explicitly; nothing keeps it after the response.
type PreviewContext struct {
	Active bool
	// Ref is the draft ref to resolve documents against. Empty means absent.
	Ref string
}

// Published is the context of a regular (non-preview) request.
var Published = PreviewContext{}

// DocumentRef returns the ref for the page's document fetch: the draft ref when
// preview is active and a ref is present, otherwise "" which the content
// client resolves to the published (master) ref.
func (p PreviewContext) DocumentRef() string {
	if p.Active && p.Ref != "" {
		return p.Ref
	}
	return ""
}

// Flag is the preview flag threaded into page view models.
func (p PreviewContext) Flag() bool {
	return p.Active
}

// Cacheable reports whether pages built for this context may be served from or
// stored in the shared page cache.
func (p PreviewContext) Cacheable() bool {
	return !p.Active
}
