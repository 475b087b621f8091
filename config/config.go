package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Content    ContentConfig    `yaml:"content"`
	Revalidate RevalidateConfig `yaml:"revalidate"`
	Preview    PreviewConfig    `yaml:"preview"`
	Comments   CommentsConfig   `yaml:"comments"`
	Cache      CacheConfig      `yaml:"cache"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Site       SiteConfig       `yaml:"site"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// ContentConfig describes the headless content API the pages are assembled from.
// The endpoint and access token are read once at start and never mutated.
type ContentConfig struct {
	Endpoint       string `yaml:"endpoint"`
	AccessToken    string `yaml:"access_token"`
	DocumentType   string `yaml:"document_type"`
	PageSize       int    `yaml:"page_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RevalidateConfig 는 페이지 스냅샷이 stale 로 간주되기까지의 시간(초)을 정의한다.
// 0 이하면 한 번 생성된 스냅샷을 계속 사용한다.
type RevalidateConfig struct {
	ListingSeconds int    `yaml:"listing_seconds"`
	PostSeconds    int    `yaml:"post_seconds"`
	Secret         string `yaml:"secret"`
}

type PreviewConfig struct {
	CookieName string `yaml:"cookie_name"`
}

// CommentsConfig configures the utteranc.es embed. An empty Repo disables comments.
type CommentsConfig struct {
	Repo      string `yaml:"repo"`
	IssueTerm string `yaml:"issue_term"`
	Label     string `yaml:"label"`
	Theme     string `yaml:"theme"`
	AnchorID  string `yaml:"anchor_id"`
}

// CacheConfig selects the snapshot store backing the page cache: memory, mongo or redis.
type CacheConfig struct {
	Backend   string `yaml:"backend"`
	MongoURI  string `yaml:"mongo_uri"`
	MongoDB   string `yaml:"mongo_db"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

type EventBusConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

type SiteConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	c, err := Load(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	config = c
}

// Load reads the yaml file at path on top of the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*AppConfig, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(c)
	fillDefaults(c)
	return c, nil
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// Default returns the configuration used when no config.yaml is present.
func Default() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8080"},
		Content: ContentConfig{
			Endpoint:       "https://spacetravelling.cdn.prismic.io/api/v2",
			DocumentType:   "posts",
			PageSize:       1,
			TimeoutSeconds: 10,
		},
		Revalidate: RevalidateConfig{
			ListingSeconds: 60,
			PostSeconds:    60 * 30,
		},
		Preview: PreviewConfig{CookieName: "spacetravelling.preview"},
		Comments: CommentsConfig{
			IssueTerm: "pathname",
			Label:     "comment :speech_balloon:",
			Theme:     "github-dark",
			AnchorID:  "inject-comments-for-uterances",
		},
		Cache: CacheConfig{
			Backend: "memory",
			MongoDB: "spacetravelling",
		},
		EventBus: EventBusConfig{
			Topic:   "content.changed",
			GroupID: "spacetravelling-api",
		},
		Site: SiteConfig{Name: "spacetravelling", BaseURL: "http://localhost:8080"},
	}
}

func applyEnv(c *AppConfig) {
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Content.Endpoint, "CONTENT_API_ENDPOINT")
	setString(&c.Content.AccessToken, "CONTENT_ACCESS_TOKEN")
	setString(&c.Preview.CookieName, "PREVIEW_COOKIE")
	setString(&c.Revalidate.Secret, "REVALIDATE_SECRET")
	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setString(&c.Cache.MongoURI, "MONGO_URI")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.EventBus.Brokers, "KAFKA_BROKERS")
	setString(&c.Comments.Repo, "UTTERANCES_REPO")

	if v := strings.TrimSpace(os.Getenv("CONTENT_PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Content.PageSize = n
		}
	}
}

// fillDefaults restores zero values a partial config.yaml may have left behind.
func fillDefaults(c *AppConfig) {
	d := Default()
	if c.Content.DocumentType == "" {
		c.Content.DocumentType = d.Content.DocumentType
	}
	if c.Content.PageSize <= 0 {
		c.Content.PageSize = d.Content.PageSize
	}
	if c.Content.TimeoutSeconds <= 0 {
		c.Content.TimeoutSeconds = d.Content.TimeoutSeconds
	}
	if c.Preview.CookieName == "" {
		c.Preview.CookieName = d.Preview.CookieName
	}
	if c.Comments.AnchorID == "" {
		c.Comments.AnchorID = d.Comments.AnchorID
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.EventBus.Topic == "" {
		c.EventBus.Topic = d.EventBus.Topic
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
