package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"spacetravelling/cmd/api/event/dispatcher"
	"spacetravelling/cmd/api/pagecache"
	"spacetravelling/cmd/internal/eventbus"
	"spacetravelling/cmd/internal/app"
	"spacetravelling/cmd/internal/logger"
	"spacetravelling/config"
)

var (
	cfgFile   string
	appConfig config.AppConfig
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "generate",
		Short: "Build pass for the spacetravelling pages",
		Long: `generate declares the statically generated paths, builds the listing,
feed and every post page ahead of time into the snapshot store, and walks
the whole listing through the paginator.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeConfig()
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml found from the working directory)")

	rootCmd.AddCommand(newPathsCmd(), newBuildCmd(), newListingCmd(), newRevalidateCmd())
	return rootCmd
}

func initializeConfig() error {
	if cfgFile == "" {
		config.InitApp()
		appConfig = config.GetConfig()
	} else {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = *c
	}
	logger.Init(appConfig.Logging.Level)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the static path declaration of every page",
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.NewPages(appConfig)
			if err != nil {
				return err
			}
			resp, err := pages.Paths.Declare(cmd.Context())
			if err != nil {
				return fmt.Errorf("declare paths: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newListingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listing",
		Short: "Walk the whole listing through the paginator and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.NewPages(appConfig)
			if err != nil {
				return err
			}
			all, err := pages.Listing.All(cmd.Context())
			if err != nil {
				return fmt.Errorf("walk listing: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), all)
		},
	}
}

func newBuildCmd() *cobra.Command {
	var (
		outDir      string
		concurrency int
		noStore     bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the listing, feed and every declared post",
		Long: `build generates every declared page concurrently. Pages are written to the
configured snapshot store and, with --out, to JSON files. A page that fails
does not stop the others; the command exits non-zero if any page failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pages, err := app.NewPages(appConfig)
			if err != nil {
				return err
			}

			b := &Builder{
				Renderer:    pages.Renderer,
				Paths:       pages.Paths,
				OutDir:      outDir,
				Concurrency: concurrency,
				Retry:       DefaultRetryConfig(),
			}
			if !noStore {
				store, err := app.OpenStore(ctx, appConfig.Cache)
				if err != nil {
					return err
				}
				cache := pagecache.New(store)
				defer app.CloseCache(context.WithoutCancel(ctx), cache)
				b.Cache = cache
			}
			if outDir != "" {
				if abs, err := filepath.Abs(outDir); err == nil {
					b.OutDir = abs
				}
			}

			results, err := b.Build(ctx)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "also write every page to this directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "pages generated at the same time")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not write to the snapshot store")
	return cmd
}

func newRevalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revalidate [uid...]",
		Short: "Ask running api servers to drop the snapshots of the given posts (all pages without uids)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appConfig.EventBus.Brokers == "" {
				return fmt.Errorf("revalidate needs eventbus.brokers (KAFKA_BROKERS); the in-memory bus does not reach other processes")
			}
			ctx := cmd.Context()
			bus, err := app.OpenBus(ctx, appConfig.EventBus)
			if err != nil {
				return err
			}
			defer bus.Close()

			d := dispatcher.NewEventDispatcher(bus, eventbus.NewTopic(appConfig.EventBus.Topic))
			evt, err := d.PublishContentChanged(ctx, "generate", args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s %s\n", evt.Type, evt.ID)
			return nil
		},
	}
}

// report 는 결과를 출력하고, 실패한 페이지가 있으면 error 를 돌려준다.
func report(w io.Writer, results []PageResult) error {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", r.Key, r.Err)
			continue
		}
		fmt.Fprintf(w, "ok   %s (%d bytes)\n", r.Key, r.Bytes)
	}
	if failed := Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d pages failed", len(failed), len(results))
	}
	return nil
}
