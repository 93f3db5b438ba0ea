package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"wpsearch/internal/domain"
	"wpsearch/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search server",
	Long: `Start the HTTP server: a demo search UI on /, a JSON API on /search,
and a reindex trigger on POST /reindex.

Examples:
  wpsearch serve
  wpsearch serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(a.queryUC, a.reindexer, server.Config{
		PageTitle:   cfg.Server.PageTitle,
		DefaultSite: cfg.Site.DefaultBase,
		Defaults: domain.QueryParams{
			K:       cfg.Retrieve.K,
			SparseK: cfg.Retrieve.SparseK,
			Alpha:   cfg.Retrieve.Alpha,
		},
	}, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	a.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
