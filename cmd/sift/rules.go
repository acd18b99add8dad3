package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siftcat/sift/internal/config"
	"github.com/siftcat/sift/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect saved categorization rules",
	}
	cmd.AddCommand(listRulesCmd())
	return cmd
}

func rulesPath() string {
	if p := viper.GetString("files.rules"); p != "" {
		return config.ExpandPath(p)
	}
	return "rules.json"
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules, patterns, and any rejected patterns",
		RunE: func(_ *cobra.Command, _ []string) error {
			store := rules.Load(rulesPath())

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Description\tCategory\tGroup\n")
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 30), strings.Repeat("-", 20), strings.Repeat("-", 14))
			for _, e := range store.Entries() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Description, e.Category, e.Group)
			}
			w.Flush()

			if pats := store.Patterns(); len(pats) > 0 {
				fmt.Println("\nPatterns (first match wins):")
				for _, p := range pats {
					fmt.Printf("  %s -> %s / %s\n", p.Pattern, p.Category, p.Group)
				}
			}

			if rej := store.Rejected(); len(rej) > 0 {
				fmt.Println("\nRejected patterns (never matched, fix to re-enable):")
				for _, r := range rej {
					fmt.Printf("  %s: %s\n", r.Rule.Pattern, r.Reason)
				}
			}
			return nil
		},
	}
}
