package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export runs as JSON",
		Long:  "Export every run with its summaries, oldest first. Filter by input path with -i.",
		Run:   runExport,
	}

	cmd.Flags().StringP("input", "i", "", "Filter by input path")

	runsCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	input, _ := cmd.Flags().GetString("input")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.Export(cmd.Context(), input)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Println(string(b))
}
