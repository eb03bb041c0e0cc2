/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/hantran/internal/store"
)

var (
	usageDBPath   string
	usageDocument string
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Report accumulated token and cost usage",
	Long: `Report usage totals from the SQLite ledger: request count, token
counts, and cost. With --document, totals are limited to one document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(usageDBPath)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer db.Close()

		ctx := context.Background()

		if usageDocument != "" {
			t, err := db.DocumentTotals(ctx, usageDocument)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d requests, %d tokens (%d prompt + %d completion), $%.4f\n",
				usageDocument, t.Requests, t.Tokens, t.PromptTokens, t.CompletionTokens, t.Cost)
			return nil
		}

		t, err := db.Totals(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Total: %d requests, %d tokens (%d prompt + %d completion), $%.4f\n",
			t.Requests, t.Tokens, t.PromptTokens, t.CompletionTokens, t.Cost)

		docs, err := db.ListDocuments(ctx)
		if err != nil {
			return err
		}
		for _, d := range docs {
			dt, err := db.DocumentTotals(ctx, d.Identity)
			if err != nil {
				return err
			}
			fmt.Printf("  %-40s %-10s %d requests, $%.4f\n", d.Identity, d.Status, dt.Requests, dt.Cost)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().StringVar(&usageDBPath, "db", "hantran.db", "SQLite usage ledger path")
	usageCmd.Flags().StringVar(&usageDocument, "document", "", "limit totals to one document identity")
}
