package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/scratchpad/internal/store"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the summarizer run store",
}

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List summarizer runs, newest first",
		Run:   runList,
	}

	cmd.Flags().StringP("input", "i", "", "Filter by input path")
	cmd.Flags().String("status", "", "Filter by status: running, done, partial, failed")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output run ids")

	runsCmd.AddCommand(cmd)
	RootCmd.AddCommand(runsCmd)
}

func runList(cmd *cobra.Command, args []string) {
	input, _ := cmd.Flags().GetString("input")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListParams{
		Input:  input,
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, r := range runs {
			fmt.Println(r.ID)
		}
		return
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Println(string(b))
}
