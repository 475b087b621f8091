package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/clients/contentclient/contentclienttest"
	"spacetravelling/cmd/api/dto"
	"spacetravelling/cmd/api/middleware"
	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/internal/app"
	"spacetravelling/cmd/internal/eventbus"
	"spacetravelling/config"
	"spacetravelling/events"
)

const (
	testSecret    = "s3cret"
	testDraftRef  = "draft-ref"
	testOtherHost = "http://evil.example/api/v2/documents/search?page=2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	engine *gin.Engine
	deps   Deps
	srv    *contentclienttest.Server
	cfg    *config.AppConfig
	store  *pagecache.MemoryStore
	bus    *eventbus.MemoryEventBus
	topic  eventbus.Topic
}

func newTestEnv(t *testing.T, docs ...contentclient.Document) *testEnv {
	t.Helper()
	srv := contentclienttest.NewServer(docs...)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Content.Endpoint = srv.Endpoint()
	cfg.Revalidate.Secret = testSecret
	cfg.Comments.Repo = "joseph/spacetravelling"
	cfg.Site.BaseURL = "https://spacetravelling.dev"

	pages, err := app.NewPagesWithClient(*cfg, contentclient.New(srv.Endpoint(), "", 5*time.Second))
	require.NoError(t, err)

	store := pagecache.NewMemoryStore()
	bus := eventbus.NewMemoryEventBus()
	t.Cleanup(bus.Close)
	topic := eventbus.NewTopic(cfg.EventBus.Topic)

	deps := Deps{
		Health:           pages.Client,
		Renderer:         pages.Renderer,
		Listing:          pages.Listing,
		Posts:            pages.Posts,
		Paths:            pages.Paths,
		Cache:            pagecache.New(store),
		Bus:              bus,
		Topic:            topic,
		ListingTTL:       time.Minute,
		PostTTL:          time.Minute,
		PreviewCookie:    cfg.Preview.CookieName,
		RevalidateSecret: cfg.Revalidate.Secret,
	}
	return &testEnv{engine: New(deps), deps: deps, srv: srv, cfg: cfg, store: store, bus: bus, topic: topic}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.do(req)
}

func (e *testEnv) postJSON(path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return e.do(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHomeIsCached(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(3)...)

	rec := env.get("/")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, string(pagecache.Miss), rec.Header().Get(middleware.HeaderPageCache))

	home := decode[dto.HomePage](t, rec)
	require.Len(t, home.PostsPagination.Results, 1)
	assert.Equal(t, "post-3", home.PostsPagination.Results[0].UID)
	assert.NotNil(t, home.PostsPagination.NextPage)
	assert.False(t, home.Preview)

	searches := len(env.srv.SearchRequests())
	rec = env.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(pagecache.Fresh), rec.Header().Get(middleware.HeaderPageCache))
	assert.Len(t, env.srv.SearchRequests(), searches)
}

func TestPostPage(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(3)...)

	rec := env.get("/post/post-2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page := decode[dto.PostPage](t, rec)
	assert.Equal(t, "post-2", page.Post.UID)
	assert.Equal(t, 1, page.ReadingTime)
	require.NotNil(t, page.PrevPost)
	require.NotNil(t, page.NextPost)
	assert.Equal(t, "post-1", page.PrevPost.UID)
	assert.Equal(t, "post-3", page.NextPost.UID)
	require.NotNil(t, page.Comments)
	assert.Contains(t, page.Comments.Script, `repo="joseph/spacetravelling"`)
}

func TestPostNotFoundIsNotCached(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(1)...)

	for range 2 {
		rec := env.get("/post/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decode[dto.ErrorResponseDTO](t, rec).Error)
		assert.Equal(t, string(pagecache.Miss), rec.Header().Get(middleware.HeaderPageCache))
	}
	assert.Equal(t, 0, env.store.Len())
}

func TestMalformedPostIs500(t *testing.T) {
	data := contentclienttest.PostData("broken")
	delete(data, "banner")
	env := newTestEnv(t, contentclienttest.Post("ID1", "broken", "2021-03-01T19:25:28+0000", data))

	rec := env.get("/post/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "malformed_document", decode[dto.ErrorResponseDTO](t, rec).Error)
}

func TestSourceUnavailableIs502(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(2)...)
	env.srv.FailWith(http.StatusInternalServerError, 0)

	rec := env.get("/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "source_unavailable", decode[dto.ErrorResponseDTO](t, rec).Error)
}

func TestPreviewCookieBypassesCache(t *testing.T) {
	docs := contentclienttest.Timeline(3)
	env := newTestEnv(t, docs...)
	env.srv.AddDraft(testDraftRef, contentclienttest.Post("ID2", "post-2", "2021-03-02T19:25:28+0000", contentclienttest.PostData("draft title")))

	cookie := &http.Cookie{Name: env.cfg.Preview.CookieName, Value: testDraftRef}
	rec := env.get("/post/post-2", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, string(pagecache.Bypass), rec.Header().Get(middleware.HeaderPageCache))

	page := decode[dto.PostPage](t, rec)
	assert.True(t, page.Preview)
	assert.Equal(t, "draft title", page.Post.Title)
	require.NotNil(t, page.PrevPost)
	assert.Equal(t, "post-1", page.PrevPost.Title)
	assert.Equal(t, 0, env.store.Len())

	// 같은 페이지를 preview 없이 요청하면 발행본이 나온다.
	rec = env.get("/post/post-2")
	require.Equal(t, http.StatusOK, rec.Code)
	published := decode[dto.PostPage](t, rec)
	assert.False(t, published.Preview)
	assert.Equal(t, "post-2", published.Post.Title)
}

func TestEnterAndExitPreview(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(2)...)
	env.srv.AddDraft(testDraftRef, contentclienttest.Post("ID2", "post-2", "2021-03-02T19:25:28+0000", contentclienttest.PostData("draft")))

	rec := env.get("/api/preview?token=" + testDraftRef + "&documentId=ID2")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code, rec.Body.String())
	assert.Equal(t, "/post/post-2", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, env.cfg.Preview.CookieName, cookies[0].Name)
	assert.Equal(t, testDraftRef, cookies[0].Value)

	rec = env.get("/api/exit-preview")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestPreviewRequiresParams(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, env.get("/api/preview?token=x").Code)
	assert.Equal(t, http.StatusBadRequest, env.get("/api/preview?documentId=ID1").Code)
}

func TestLoadMore(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(3)...)

	home := decode[dto.HomePage](t, env.get("/"))
	state, err := json.Marshal(home.PostsPagination)
	require.NoError(t, err)

	rec := env.postJSON("/api/v1/posts/more", string(state), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	merged := decode[dto.LoadMoreResponse](t, rec)
	require.Len(t, merged.Results, 2)
	assert.Equal(t, "post-3", merged.Results[0].UID)
	assert.Equal(t, "post-2", merged.Results[1].UID)
	assert.NotNil(t, merged.NextPage)
	assert.False(t, merged.Preview)

	// 응답을 그대로 다시 보내면 다음 페이지가 이어 붙는다.
	rec = env.postJSON("/api/v1/posts/more", rec.Body.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	merged = decode[dto.LoadMoreResponse](t, rec)
	require.Len(t, merged.Results, 3)
	assert.Equal(t, "post-1", merged.Results[2].UID)
	assert.Nil(t, merged.NextPage)
}

func TestLoadMoreCarriesPreviewFlag(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(2)...)

	home := decode[dto.HomePage](t, env.get("/"))
	state, err := json.Marshal(home.PostsPagination)
	require.NoError(t, err)

	rec := env.postJSON("/api/v1/posts/more", string(state), map[string]string{
		"Cookie": env.cfg.Preview.CookieName + "=" + testDraftRef,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	merged := decode[dto.LoadMoreResponse](t, rec)
	assert.True(t, merged.Preview)
	assert.Len(t, merged.Results, 2)
}

func TestLoadMoreWithoutNextPageIsNoop(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(1)...)
	searches := len(env.srv.SearchRequests())

	rec := env.postJSON("/api/v1/posts/more", `{"results":[{"uid":"post-1","title":"post-1"}],"next_page":null}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decode[dto.LoadMoreResponse](t, rec)
	assert.Len(t, merged.Results, 1)
	assert.Nil(t, merged.NextPage)
	assert.Len(t, env.srv.SearchRequests(), searches)
}

func TestLoadMoreErrors(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(3)...)

	rec := env.postJSON("/api/v1/posts/more", `{"results":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.postJSON("/api/v1/posts/more", `{"results":[],"next_page":"`+testOtherHost+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_cursor", decode[dto.ErrorResponseDTO](t, rec).Error)

	home := decode[dto.HomePage](t, env.get("/"))
	state, err := json.Marshal(home.PostsPagination)
	require.NoError(t, err)
	env.srv.FailWith(http.StatusServiceUnavailable, len(env.srv.SearchRequests()))

	rec = env.postJSON("/api/v1/posts/more", string(state), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPaths(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(3)...)

	rec := env.get("/api/v1/paths")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[dto.PathsResponse](t, rec)
	require.Len(t, resp.Pages, 2)

	listing, post := resp.Pages[0], resp.Pages[1]
	assert.Equal(t, "/", listing.Page)
	assert.Empty(t, listing.Paths)
	assert.Equal(t, dto.FallbackBlocking, listing.Fallback)

	assert.Equal(t, "/post/[slug]", post.Page)
	assert.Equal(t, dto.FallbackBlocking, post.Fallback)
	assert.ElementsMatch(t,
		[]dto.PathParams{{Slug: "post-1"}, {Slug: "post-2"}, {Slug: "post-3"}},
		post.Paths,
	)
}

func TestFeed(t *testing.T) {
	env := newTestEnv(t, contentclienttest.Timeline(3)...)

	rec := env.get("/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")

	feed, err := gofeed.NewParser().ParseString(rec.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "spacetravelling", feed.Title)
	require.Len(t, feed.Items, 3)
	assert.Equal(t, "post-3", feed.Items[0].Title)
	assert.Equal(t, "https://spacetravelling.dev/post/post-3", feed.Items[0].Link)
	require.NotNil(t, feed.Items[0].PublishedParsed)
	assert.Equal(t, time.Date(2021, 3, 3, 19, 25, 28, 0, time.UTC), feed.Items[0].PublishedParsed.UTC())
}

func TestRevalidateAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON("/api/revalidate", `{"uids":["post-1"]}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.postJSON("/api/revalidate", `{"uids":["post-1"]}`, map[string]string{"X-Revalidate-Secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.postJSON("/api/revalidate", `{"uids":`, map[string]string{"X-Revalidate-Secret": testSecret})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevalidateDisabledWithoutSecret(t *testing.T) {
	env := newTestEnv(t)
	d := env.deps
	d.RevalidateSecret = ""
	env.engine = New(d)

	rec := env.postJSON("/api/revalidate", `{}`, map[string]string{"X-Revalidate-Secret": ""})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRevalidatePublishesContentChanged(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan events.ContentChangedEvent, 16)
	go func() {
		_ = eventbus.SubscribeJSON(ctx, env.bus, "test", env.topic, func(_ context.Context, evt events.ContentChangedEvent, _ eventbus.Event) error {
			got <- evt
			return nil
		})
	}()

	// 구독이 등록되기 전의 발행은 유실되므로 받을 때까지 다시 보낸다.
	var evt events.ContentChangedEvent
	assert.Eventually(t, func() bool {
		rec := env.postJSON("/api/revalidate?secret="+testSecret, `{"uids":["post-1"]}`, nil)
		if rec.Code != http.StatusAccepted {
			return false
		}
		select {
		case evt = <-got:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, events.ContentChanged, evt.Type)
	assert.Equal(t, "webhook", evt.Source)
	assert.Equal(t, []string{"post-1"}, evt.UIDs)
}
