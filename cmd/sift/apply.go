package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/siftcat/sift/internal/common"
	"github.com/siftcat/sift/internal/config"
	"github.com/siftcat/sift/internal/ledger"
	"github.com/siftcat/sift/internal/rules"
)

func applyCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "apply <ledger.csv>",
		Short: "Apply saved rules to a CSV without the interactive session",
		Long: `Run every saved rule over the CSV and report how many rows they cover.
Nothing is written unless --write is passed; the output keeps the original
column order with Category and Group filled in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ledgerPath := config.ExpandPath(args[0])
			files := config.ResolveFiles(ledgerPath)

			led, err := ledger.Load(ledgerPath)
			if err != nil {
				return common.NewUserError("could not load transactions", err)
			}
			store := rules.Load(files.Rules)

			bar := progressbar.NewOptions(led.Len(),
				progressbar.OptionSetDescription("applying rules"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			matched := 0
			for i := range led.Rows {
				if e, ok := store.Find(led.Rows[i].Description); ok {
					led.Rows[i].Category = e.Category
					led.Rows[i].Group = e.Group
					matched++
				}
				_ = bar.Add(1)
			}

			common.LogInfo("applied rules", common.Fields{
				"rules":   store.Len(),
				"matched": matched,
				"rows":    led.Len(),
			})
			fmt.Printf("%d/%d rows matched a rule\n", matched, led.Len())
			if !write {
				fmt.Println("dry run; pass --write to update the file")
				return nil
			}

			out, err := led.Encode()
			if err != nil {
				return fmt.Errorf("failed to encode ledger: %w", err)
			}
			if err := os.WriteFile(ledgerPath, out, 0o644); err != nil {
				return fmt.Errorf("failed to write ledger: %w", err)
			}
			fmt.Printf("wrote %s\n", ledgerPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "write matched categories back to the CSV")
	return cmd
}
