package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siftcat/sift/internal/config"
	"github.com/siftcat/sift/internal/persist"
	"github.com/siftcat/sift/internal/taxonomy"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the category taxonomy",
		Long:  `List and add the grouped categories used when categorizing transactions.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

// taxonomyPath resolves the standalone taxonomy location for commands that
// run without a ledger.
func taxonomyPath() string {
	if p := viper.GetString("files.taxonomy"); p != "" {
		return config.ExpandPath(p)
	}
	return "groups.txt"
}

func listCategoriesCmd() *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(_ *cobra.Command, _ []string) error {
			tax := taxonomy.Load(taxonomyPath())

			if flat {
				_, err := os.Stdout.Write(tax.EncodeCategories())
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "ID\tCategory\tGroup\n")
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 24), strings.Repeat("-", 16))
			for _, d := range tax.DisplayIDs() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", d.ID, d.Category, d.Group)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "print bare category names, one per line")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := taxonomyPath()
			tax := taxonomy.Load(path)

			if !tax.AddCategory(args[0], group) {
				return fmt.Errorf("could not add category %q: empty, reserved, or already present", args[0])
			}

			st := persist.NewStage()
			st.Add(path, tax.EncodeGroups())
			if err := st.Commit(); err != nil {
				return err
			}
			name, _ := tax.CanonicalCategory(args[0])
			g, _ := tax.GroupOf(name)
			fmt.Printf("added %s under %s\n", name, g)
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "group to place the category under")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
