package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"spacetravelling/cmd/api/event/dispatcher"
	"spacetravelling/cmd/api/handlers"
	"spacetravelling/cmd/api/middleware"
	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/api/services"
	"spacetravelling/cmd/internal/eventbus"
	_ "spacetravelling/docs"
)

// HealthChecker 는 content API 연결 상태를 확인한다. *contentclient.Client 가 구현한다.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps 는 라우트가 필요로 하는 서비스 묶음이다. main 과 테스트가 채운다.
type Deps struct {
	Health   HealthChecker
	Renderer *services.PageRenderer
	Listing  *services.ListingService
	Posts    *services.PostService
	Paths    *services.PathsService
	Cache    *pagecache.Cache // nil 이면 모든 페이지를 요청마다 생성한다

	Bus   eventbus.EventBus
	Topic eventbus.Topic

	ListingTTL       time.Duration
	PostTTL          time.Duration
	PreviewCookie    string
	RevalidateSecret string
	SlowRequest      time.Duration
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())
	r.Use(middleware.Preview(d.PreviewCookie))
	if d.SlowRequest > 0 {
		r.Use(middleware.SlowRequestLogging(d.SlowRequest))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := d.Health.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "content_api": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// pages
	r.GET("/", handlers.HomeHandler(d.Renderer, d.Cache, d.ListingTTL))
	r.GET("/post/:slug", handlers.PostHandler(d.Renderer, d.Cache, d.PostTTL))
	r.GET("/feed.xml", handlers.FeedHandler(d.Renderer, d.Cache, d.ListingTTL))

	// preview
	r.GET("/api/preview", handlers.PreviewHandler(d.Posts, d.PreviewCookie))
	r.GET("/api/exit-preview", handlers.ExitPreviewHandler(d.PreviewCookie))

	// webhook
	r.POST("/api/revalidate", middleware.RevalidateAuth(d.RevalidateSecret), handlers.RevalidateHandler(dispatcher.NewEventDispatcher(d.Bus, d.Topic)))

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.POST("/posts/more", handlers.LoadMoreHandler(d.Listing))
		api.GET("/paths", handlers.PathsHandler(d.Paths))
	}

	return r
}

// WithCORS 는 engine 을 rs/cors 로 감싼다. origins 가 비면 engine 을 그대로 돌려준다.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id", "X-Revalidate-Secret"},
		ExposedHeaders:   []string{"X-Request-Id", middleware.HeaderPageCache},
		AllowCredentials: true,
	}).Handler(h)
}
