package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/dto"
	"spacetravelling/cmd/api/middleware"
	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/api/services"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeRSS  = "application/rss+xml; charset=utf-8"
)

// servePage 는 preview 가 아니면 page cache 를 거쳐, preview 면 cache 를 건너뛰고
// generate 결과를 응답한다. 응답 헤더 X-Page-Cache 에 결과를 남긴다.
func servePage(c *gin.Context, cache *pagecache.Cache, key string, ttl time.Duration, contentType string, generate pagecache.GenerateFunc) {
	ctx := c.Request.Context()

	var (
		body   []byte
		status pagecache.Status
		err    error
	)
	if cache == nil || !middleware.PreviewFrom(c).Cacheable() {
		status = pagecache.Bypass
		body, err = generate(ctx)
	} else {
		body, status, err = cache.Serve(ctx, key, ttl, generate)
	}

	c.Header(middleware.HeaderPageCache, string(status))
	if err != nil {
		writeError(c, "page "+key, err)
		return
	}
	c.Data(http.StatusOK, contentType, body)
}

// HomeHandler godoc
// @Summary      Home page
// @Description  First page of the post listing, newest first
// @Tags         pages
// @Produce      json
// @Success      200  {object}  dto.HomePage
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       / [get]
func HomeHandler(renderer *services.PageRenderer, cache *pagecache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		preview := middleware.PreviewFrom(c)
		servePage(c, cache, pagecache.ListingKey(), ttl, contentTypeJSON, func(ctx context.Context) ([]byte, error) {
			return renderer.Home(ctx, preview)
		})
	}
}

// PostHandler godoc
// @Summary      Post page
// @Description  Post detail with reading time, adjacent posts and comments embed
// @Tags         pages
// @Param        slug  path  string  true  "Post uid"
// @Produce      json
// @Success      200  {object}  dto.PostPage
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /post/{slug} [get]
func PostHandler(renderer *services.PageRenderer, cache *pagecache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.Param("slug")
		if uid == "" {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "not_found"})
			return
		}
		preview := middleware.PreviewFrom(c)
		servePage(c, cache, pagecache.PostKey(uid), ttl, contentTypeJSON, func(ctx context.Context) ([]byte, error) {
			return renderer.Post(ctx, uid, preview)
		})
	}
}

// FeedHandler godoc
// @Summary      RSS feed
// @Description  RSS 2.0 feed of every published post
// @Tags         pages
// @Produce      xml
// @Success      200  {string}  string
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /feed.xml [get]
func FeedHandler(renderer *services.PageRenderer, cache *pagecache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		servePage(c, cache, pagecache.FeedKey(), ttl, contentTypeRSS, renderer.Feed)
	}
}

// LoadMoreHandler godoc
// @Summary      Load more posts
// @Description  Fetch the page at next_page and append it to the posted pagination state
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        state  body  dto.PostPagination  true  "Current pagination state"
// @Success      200  {object}  dto.LoadMoreResponse
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /api/v1/posts/more [post]
func LoadMoreHandler(listing *services.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state dto.PostPagination
		if err := c.ShouldBindJSON(&state); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}

		merged, err := listing.LoadMore(c.Request.Context(), state)
		if err != nil {
			// 실패해도 클라이언트는 기존 state 를 그대로 유지한다.
			if errors.Is(err, contentclient.ErrSourceQueryInvalid) {
				c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_cursor"})
				return
			}
			_, code := statusFor(err)
			c.JSON(http.StatusBadGateway, dto.ErrorResponseDTO{Error: code})
			return
		}
		c.JSON(http.StatusOK, dto.LoadMoreResponse{
			PostPagination: merged,
			Preview:        middleware.PreviewFrom(c).Flag(),
		})
	}
}

// PathsHandler godoc
// @Summary      Static path declaration
// @Description  Paths generated at build time per page, with fallback and revalidate interval
// @Tags         build
// @Produce      json
// @Success      200  {object}  dto.PathsResponse
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /api/v1/paths [get]
func PathsHandler(paths *services.PathsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := paths.Declare(c.Request.Context())
		if err != nil {
			writeError(c, "paths", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
