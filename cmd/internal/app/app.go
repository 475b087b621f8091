// Package app wires the services shared by the api server and the generate
// command from an AppConfig.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/api/services"
	"spacetravelling/cmd/internal/eventbus"
	"spacetravelling/cmd/internal/logger"
	"spacetravelling/config"
	"spacetravelling/db"
)

// Pages 는 페이지 생성에 필요한 서비스 묶음이다.
type Pages struct {
	Client   *contentclient.Client
	Listing  *services.ListingService
	Posts    *services.PostService
	Paths    *services.PathsService
	Renderer *services.PageRenderer
}

// NewPages 는 cfg.Content 로 content API 클라이언트를 만들고 서비스를 조립한다.
func NewPages(cfg config.AppConfig) (*Pages, error) {
	client := contentclient.New(
		cfg.Content.Endpoint,
		cfg.Content.AccessToken,
		time.Duration(cfg.Content.TimeoutSeconds)*time.Second,
	)
	return NewPagesWithClient(cfg, client)
}

// NewPagesWithClient 는 이미 만든 클라이언트를 쓴다. 테스트가 fake content API 를 붙일 때 쓴다.
func NewPagesWithClient(cfg config.AppConfig, client *contentclient.Client) (*Pages, error) {
	comments, err := services.CommentsEmbed(services.CommentsConfig{
		Repo:      cfg.Comments.Repo,
		IssueTerm: cfg.Comments.IssueTerm,
		Label:     cfg.Comments.Label,
		Theme:     cfg.Comments.Theme,
		AnchorID:  cfg.Comments.AnchorID,
	})
	if err != nil {
		return nil, err
	}

	typeTag := cfg.Content.DocumentType
	listing := services.NewListingService(client, typeTag, cfg.Content.PageSize)
	posts := services.NewPostService(client, typeTag, comments)
	return &Pages{
		Client:  client,
		Listing: listing,
		Posts:   posts,
		Paths:   services.NewPathsService(client, typeTag, cfg.Revalidate.ListingSeconds, cfg.Revalidate.PostSeconds),
		Renderer: services.NewPageRenderer(listing, posts, services.SiteInfo{
			Name:    cfg.Site.Name,
			BaseURL: cfg.Site.BaseURL,
		}),
	}, nil
}

// OpenStore 는 cache.backend 에 맞는 snapshot store 를 연다. (memory | mongo | redis)
func OpenStore(ctx context.Context, cfg config.CacheConfig) (pagecache.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return pagecache.NewMemoryStore(), nil
	case "mongo", "mongodb":
		if err := db.Init(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
		logger.InfoWithFields("page snapshots in mongo", logger.Fields{"db": cfg.MongoDB, "collection": db.SnapshotsCollection})
		return pagecache.NewMongoStore(db.Database().Collection(db.SnapshotsCollection), &pagecache.ZstdCompressor{}), nil
	case "redis":
		client, err := pagecache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.InfoWithFields("page snapshots in redis", logger.Fields{"addr": cfg.RedisAddr, "db": cfg.RedisDB})
		return pagecache.NewRedisStore(client, &pagecache.ZstdCompressor{}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// CloseCache 는 백그라운드 재생성을 기다린 뒤 store 와 (mongo 인 경우) 전역 클라이언트를 닫는다.
func CloseCache(ctx context.Context, cache *pagecache.Cache) {
	if err := cache.Close(ctx); err != nil {
		logger.ErrorWithFields("failed to close snapshot store", logger.Fields{"error": err.Error()})
	}
	if err := db.Disconnect(ctx); err != nil {
		logger.ErrorWithFields("failed to disconnect MongoDB", logger.Fields{"error": err.Error()})
	}
}

// OpenBus 는 brokers 가 설정되어 있으면 Kafka, 아니면 in-memory 버스를 만든다.
func OpenBus(ctx context.Context, cfg config.EventBusConfig) (eventbus.EventBus, error) {
	topic := eventbus.NewTopic(cfg.Topic)
	if cfg.Brokers == "" {
		logger.Log.Info("KAFKA_BROKERS not set, using in-memory event bus")
		return eventbus.NewMemoryEventBus(), nil
	}

	if err := eventbus.EnsureTopics(ctx, cfg.Brokers, topic, 3); err != nil {
		logger.Log.Errorf("failed to ensure eventbus topics: %v", err)
	}
	bus, err := eventbus.NewKafkaEventBus(cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	return bus, nil
}
