package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/scratchpad/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import runs from JSON",
		Long:  "Import runs from JSON (file or stdin). Expects the format produced by export; existing run ids are skipped.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	runsCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var runs []model.Run
	if err := json.Unmarshal(data, &runs); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), runs)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
