package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Reubentwj/VIBUSAPP/services"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-file]",
	Short: "Analyze one photo from disk and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		a, err := buildApp(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.food.Analyze(cmd.Context(), services.AnalyzeRequest{
			Image:     base64.StdEncoding.EncodeToString(raw),
			RequestID: uuid.NewString(),
		})
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}
