package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"wpsearch/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wpsearch",
	Short: "Hybrid semantic search over a WordPress site",
	Long: `wpsearch crawls a WordPress site's REST API (with a sitemap fallback),
indexes pages and posts into a hybrid dense+sparse store, and serves ranked
search results over HTTP or the command line.

Example usage:
  wpsearch reindex                        # Crawl and index the default site
  wpsearch query -q "landfill gas"        # Search the index
  wpsearch serve                          # Start the HTTP server`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win either way.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "wpsearch.yaml", "config file")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}
