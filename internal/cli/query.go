package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"wpsearch/internal/domain"
)

var (
	queryText    string
	queryK       int
	querySparseK int
	queryAlpha   float64
	querySite    string
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search the index",
	Long: `Run a hybrid search against the index. Alpha weights the fusion:
1 is pure dense (semantic), 0 is pure sparse (keyword).

Examples:
  wpsearch query -q "landfill gas"
  wpsearch query -q "stormwater permits" -k 5 --alpha 0.7 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().IntVar(&querySparseK, "sparse-k", 0, "sparse candidate count (default from config)")
	queryCmd.Flags().Float64Var(&queryAlpha, "alpha", -1, "fusion weight in [0,1] (default from config)")
	queryCmd.Flags().StringVar(&querySite, "site", "", "restrict results to a site")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	p := domain.QueryParams{
		K:       cfg.Retrieve.K,
		SparseK: cfg.Retrieve.SparseK,
		Alpha:   cfg.Retrieve.Alpha,
		Site:    querySite,
	}
	if queryK > 0 {
		p.K = queryK
	}
	if querySparseK > 0 {
		p.SparseK = querySparseK
	}
	if queryAlpha >= 0 {
		p.Alpha = queryAlpha
	}

	results, err := a.queryUC.Query(context.Background(), queryText, p)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s", i+1, r.Metadata["title"])
		if r.Score != nil {
			fmt.Printf(" (score: %.4f)", *r.Score)
		}
		fmt.Println(" ---")
		if url := r.Metadata["url"]; url != "" {
			fmt.Println(url)
		}
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}
