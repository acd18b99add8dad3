package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siftcat/sift/internal/common"
	"github.com/siftcat/sift/internal/config"
	"github.com/siftcat/sift/internal/ledger"
	"github.com/siftcat/sift/internal/match"
	"github.com/siftcat/sift/internal/rules"
	"github.com/siftcat/sift/internal/session"
	"github.com/siftcat/sift/internal/taxonomy"
	"github.com/siftcat/sift/internal/tui"
)

func categorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <ledger.csv>",
		Short: "Interactively categorize a transaction CSV",
		Long: `Open an interactive session over the given CSV. Rows are pre-filled from
your saved rules; confirm each one, then save taxonomy, rules, and the
categorized ledger together.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledgerPath := config.ExpandPath(args[0])
			files := config.ResolveFiles(ledgerPath)

			led, err := ledger.Load(ledgerPath)
			if err != nil {
				return common.NewUserError("could not load transactions", err)
			}
			if led.Len() == 0 {
				return common.ErrEmptyLedger
			}

			// The session works on clones so an unsaved quit discards
			// every taxonomy and rule change.
			tax := taxonomy.Load(files.Taxonomy).Clone()
			store := rules.Load(files.Rules).Clone()
			for _, rej := range store.Rejected() {
				common.LogError(fmt.Errorf("%s", rej.Reason), "skipping rule pattern",
					common.Fields{"pattern": rej.Rule.Pattern})
			}

			tuning := config.ResolveTuning()
			var matchOpts []match.Option
			if tuning.FuzzyMaxDist > 0 {
				matchOpts = append(matchOpts, match.WithFuzzyMaxDist(tuning.FuzzyMaxDist))
			}
			if !tuning.PrefixIndex {
				matchOpts = append(matchOpts, match.WithoutIndex())
			}

			opts := []session.Option{
				session.WithPaths(session.Paths{
					Taxonomy: files.Taxonomy,
					Rules:    files.Rules,
					Ledger:   ledgerPath,
				}),
				session.WithMatchOptions(matchOpts...),
			}
			if tuning.DigitTimeout > 0 {
				opts = append(opts, session.WithDigitTimeout(tuning.DigitTimeout))
			}
			sess := session.New(tax, store, led, opts...)

			return tui.Run(cmd.Context(), tui.Config{
				Session: sess,
				Theme:   tui.Default,
			})
		},
	}
}
