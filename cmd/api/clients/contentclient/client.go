package contentclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"spacetravelling/cmd/api/httpclient"
)

// Client 는 headless content API(Prismic 호환 REST v2)를 호출하는 얇은 클라이언트다.
//
// - 캐싱을 하지 않는다. 캐싱/재검증은 호출자(pagecache) 책임이다.
// - 조회 결과는 raw Document 그대로 반환하고, view model 변환은 services 에서 한다.
type Client struct {
	base        *httpclient.BaseClient
	accessToken string
}

var (
	// ErrSourceUnavailable covers network failures, 5xx/429 responses and
	// undecodable bodies. Callers may retry.
	ErrSourceUnavailable = errors.New("content source unavailable")
	// ErrSourceQueryInvalid is a malformed predicate, ordering or paging option,
	// or a request the API rejected as such. Not retryable.
	ErrSourceQueryInvalid = errors.New("content source query invalid")
	// ErrNotFound means no document matched the requested identifier.
	ErrNotFound = errors.New("document not found")
)

const searchPath = "/documents/search"

// New builds a client for endpoint (e.g. https://repo.cdn.prismic.io/api/v2).
func New(endpoint, accessToken string, timeout time.Duration) *Client {
	return &Client{
		base:        httpclient.NewBaseClient(endpoint, httpclient.Config{Timeout: timeout}),
		accessToken: accessToken,
	}
}

// NewWithHTTPClient is New with a caller supplied http.Client (nil means the default).
func NewWithHTTPClient(httpClient *http.Client, endpoint, accessToken string) *Client {
	return &Client{
		base:        httpclient.NewBaseClientWithClient(httpClient, endpoint),
		accessToken: accessToken,
	}
}

// -------------------- Refs --------------------

// MasterRef returns the ref of the published snapshot from the API root.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	q := url.Values{}
	c.setToken(q)
	req, err := c.base.NewRequest(ctx, http.MethodGet, "", q)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceQueryInvalid, err)
	}

	var root apiRoot
	if err := c.do(req, "MasterRef", &root); err != nil {
		return "", err
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			return r.Ref, nil
		}
	}
	return "", fmt.Errorf("%w: api root lists no master ref", ErrSourceUnavailable)
}

// Health calls the API root and reports whether it answers.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.MasterRef(ctx)
	return err
}

// -------------------- Queries --------------------

// QueryByType runs a "document type equals typeTag" search.
func (c *Client) QueryByType(ctx context.Context, typeTag string, opts QueryOptions) (Response, error) {
	pred, err := typePredicate(typeTag)
	if err != nil {
		return Response{}, err
	}
	return c.search(ctx, query(pred), opts, "QueryByType")
}

// QueryAllByType walks every page of a type query and returns all documents in
// source order. All pages are read against the same ref.
func (c *Client) QueryAllByType(ctx context.Context, typeTag string, opts QueryOptions) ([]Document, error) {
	pred, err := typePredicate(typeTag)
	if err != nil {
		return nil, err
	}
	if opts.Ref == "" {
		ref, err := c.MasterRef(ctx)
		if err != nil {
			return nil, err
		}
		opts.Ref = ref
	}
	if opts.PageSize == 0 {
		opts.PageSize = maxPageSize
	}

	var docs []Document
	for page := 1; ; page++ {
		opts.Page = page
		resp, err := c.search(ctx, query(pred), opts, "QueryAllByType")
		if err != nil {
			return nil, err
		}
		docs = append(docs, resp.Results...)
		if resp.NextPage == nil || page >= resp.TotalPages || len(resp.Results) == 0 {
			return docs, nil
		}
	}
}

// GetByUID returns the document of typeTag whose uid equals uid.
// 존재하지 않으면 ErrNotFound 를 반환한다.
func (c *Client) GetByUID(ctx context.Context, typeTag, uid string, opts QueryOptions) (Document, error) {
	typePred, err := typePredicate(typeTag)
	if err != nil {
		return Document{}, err
	}
	uidPred, err := uidPredicate(typeTag, uid)
	if err != nil {
		return Document{}, err
	}
	return c.single(ctx, query(typePred, uidPred), opts.Ref, "GetByUID")
}

// GetByID returns the document with the store-internal id. Used to resolve
// preview links, which carry a document id rather than a uid.
func (c *Client) GetByID(ctx context.Context, id, ref string) (Document, error) {
	pred, err := idPredicate(id)
	if err != nil {
		return Document{}, err
	}
	return c.single(ctx, query(pred), ref, "GetByID")
}

// FetchPage fetches a next_page cursor as-is. The cursor already carries the
// ref, paging and token, so nothing is added to it.
func (c *Client) FetchPage(ctx context.Context, cursor string) (Response, error) {
	if cursor == "" {
		return Response{}, fmt.Errorf("%w: empty cursor", ErrSourceQueryInvalid)
	}
	req, err := c.base.NewRequestURL(ctx, cursor)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrSourceQueryInvalid, err)
	}

	var out Response
	if err := c.do(req, "FetchPage", &out); err != nil {
		return Response{}, err
	}
	return out, nil
}

func (c *Client) single(ctx context.Context, q, ref, op string) (Document, error) {
	resp, err := c.search(ctx, q, QueryOptions{PageSize: 1, Ref: ref}, op)
	if err != nil {
		return Document{}, err
	}
	if len(resp.Results) == 0 {
		return Document{}, ErrNotFound
	}
	return resp.Results[0], nil
}

func (c *Client) search(ctx context.Context, q string, opts QueryOptions, op string) (Response, error) {
	if err := validatePaging(opts); err != nil {
		return Response{}, err
	}
	orderings, err := encodeOrderings(opts.Orderings)
	if err != nil {
		return Response{}, err
	}

	ref := opts.Ref
	if ref == "" {
		ref, err = c.MasterRef(ctx)
		if err != nil {
			return Response{}, err
		}
	}

	params := url.Values{}
	params.Set("ref", ref)
	params.Set("q", q)
	if opts.PageSize > 0 {
		params.Set("pageSize", itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		params.Set("page", itoa(opts.Page))
	}
	if orderings != "" {
		params.Set("orderings", orderings)
	}
	if opts.After != "" {
		params.Set("after", opts.After)
	}
	c.setToken(params)

	req, err := c.base.NewRequest(ctx, http.MethodGet, searchPath, params)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrSourceQueryInvalid, err)
	}

	var out Response
	if err := c.do(req, op, &out); err != nil {
		return Response{}, err
	}
	return out, nil
}

// do executes req and decodes a 200 body into out, classifying failures.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.base.Do(req)
	if err != nil {
		return fmt.Errorf("%w: content-api %s: %v", ErrSourceUnavailable, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: content-api %s: decode: %v", ErrSourceUnavailable, op, err)
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: content-api %s: status=%d body=%s", ErrSourceUnavailable, op, resp.StatusCode, string(body))
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: content-api %s: status=%d body=%s", ErrSourceQueryInvalid, op, resp.StatusCode, string(body))
	default:
		return fmt.Errorf("%w: content-api %s: unexpected status=%d", ErrSourceUnavailable, op, resp.StatusCode)
	}
}

func (c *Client) setToken(q url.Values) {
	if c.accessToken != "" {
		q.Set("access_token", c.accessToken)
	}
}
