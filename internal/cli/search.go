package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/scratchpad/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored summaries by keyword",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("level", "", "Filter by level name")
	cmd.Flags().StringP("model", "m", "", "Filter by model")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	runsCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	level, _ := cmd.Flags().GetString("level")
	modelName, _ := cmd.Flags().GetString("model")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query: query,
		Level: level,
		Model: modelName,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
