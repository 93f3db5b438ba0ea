package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"wpsearch/internal/usecase"
)

var (
	reindexSite            string
	reindexIncludePages    bool
	reindexSitemapFallback bool
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Crawl a site and index its content",
	Long: `Crawl the site's WordPress REST API (posts, and pages unless disabled)
and index the content. When the REST API yields nothing and the fallback is
enabled, the sitemap is crawled instead.

Examples:
  wpsearch reindex
  wpsearch reindex --site https://example.com --include-pages=false`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	reindexCmd.Flags().StringVar(&reindexSite, "site", "", "site base URL (default from config)")
	reindexCmd.Flags().BoolVar(&reindexIncludePages, "include-pages", true, "also fetch static pages")
	reindexCmd.Flags().BoolVar(&reindexSitemapFallback, "sitemap-fallback", true, "fall back to the sitemap when REST yields nothing")
}

func runReindex(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	site := reindexSite
	if site == "" {
		site = cfg.Site.DefaultBase
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Crawling %s...\n", site)

	var bar *progressbar.ProgressBar
	progress := func(indexed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(indexed)
	}

	count, err := a.reindexer.Reindex(context.Background(), site, reindexIncludePages, reindexSitemapFallback, progress)
	if err != nil {
		if errors.Is(err, usecase.ErrNoContent) {
			return fmt.Errorf("no content found for %s", site)
		}
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("\nIndexed %d documents from %s\n", count, site)
	fmt.Printf("Index stored at: %s\n", cfg.Store.Path)
	return nil
}
