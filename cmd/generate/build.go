package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/api/services"
	"spacetravelling/cmd/internal/logger"
)

// PageResult 는 build 한 페이지 하나의 결과다.
type PageResult struct {
	Key   string
	Bytes int
	Err   error
}

// Builder generates every declared page ahead of time.
type Builder struct {
	Renderer    *services.PageRenderer
	Paths       *services.PathsService
	Cache       *pagecache.Cache // nil 이면 snapshot store 에 쓰지 않는다
	OutDir      string           // 비어 있으면 파일로 쓰지 않는다
	Concurrency int
	Retry       RetryConfig
}

type pageJob struct {
	key      string
	file     string
	generate func(ctx context.Context) ([]byte, error)
}

// Build 는 listing, feed, 그리고 선언된 모든 post 를 병렬로 만든다.
// 한 페이지의 실패는 다른 페이지를 멈추지 않고 결과에 기록된다. 반환 error 는
// 경로 선언 자체가 실패한 경우뿐이다.
func (b *Builder) Build(ctx context.Context) ([]PageResult, error) {
	var slugs []string
	err := retryDo(ctx, "declare paths", func() error {
		var err error
		slugs, err = b.Paths.PostSlugs(ctx)
		return err
	}, b.Retry)
	if err != nil {
		return nil, fmt.Errorf("declare paths: %w", err)
	}

	jobs := []pageJob{
		{key: pagecache.ListingKey(), file: "index.json", generate: func(ctx context.Context) ([]byte, error) {
			return b.Renderer.Home(ctx, services.Published)
		}},
		{key: pagecache.FeedKey(), file: "feed.xml", generate: b.Renderer.Feed},
	}
	for _, slug := range slugs {
		jobs = append(jobs, pageJob{
			key:  pagecache.PostKey(slug),
			file: filepath.Join("post", url.PathEscape(slug)+".json"),
			generate: func(ctx context.Context) ([]byte, error) {
				return b.Renderer.Post(ctx, slug, services.Published)
			},
		})
	}

	var (
		mu      sync.Mutex
		results = make([]PageResult, 0, len(jobs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Concurrency, 1))
	for _, job := range jobs {
		g.Go(func() error {
			res := b.buildPage(gctx, job)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })
	return results, nil
}

func (b *Builder) buildPage(ctx context.Context, job pageJob) PageResult {
	var body []byte
	err := retryDo(ctx, "generate "+job.key, func() error {
		var err error
		body, err = job.generate(ctx)
		return err
	}, b.Retry)
	if err != nil {
		logger.ErrorWithFields("page generation failed", logger.Fields{"key": job.key, "error": err.Error()})
		return PageResult{Key: job.key, Err: err}
	}

	if b.Cache != nil {
		if err := b.Cache.Warm(ctx, job.key, body); err != nil {
			return PageResult{Key: job.key, Err: err}
		}
	}
	if b.OutDir != "" {
		if err := writeFile(filepath.Join(b.OutDir, job.file), body); err != nil {
			return PageResult{Key: job.key, Err: err}
		}
	}

	logger.DebugWithFields("page generated", logger.Fields{"key": job.key, "bytes": len(body)})
	return PageResult{Key: job.key, Bytes: len(body)}
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Failed 는 실패한 결과만 모은다.
func Failed(results []PageResult) []PageResult {
	var out []PageResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
