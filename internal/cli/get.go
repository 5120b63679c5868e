package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/scratchpad/internal/summarize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show one run with its summaries",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("record", false, "Output only the level → text record")

	runsCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	asRecord, _ := cmd.Flags().GetBool("record")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}

	var v any = run
	if asRecord {
		v = summarize.RecordFromRun(run)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
