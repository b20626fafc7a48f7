package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fragmede/habrscore/internal/layout"
)

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <url|file> [selector...]",
		Short: "Show how the layout selectors match a page",
		Long: `Prints every selector of the layout resolved for the page with the number
of elements it matches. Pass selector names (score, item_comment, ...) to
print only those.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, names := args[0], args[1:]
			if len(names) == 0 {
				names = layout.SelectorNames
			}

			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			l, err := e.layoutFor(target)
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, ok := l.Selectors.Lookup(name); !ok {
					return fmt.Errorf("unknown selector %q", name)
				}
			}

			_, doc, err := e.loader.LoadDocument(cmd.Context(), target, false)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "layout\t%s\n", l.Variant)
			for _, name := range names {
				sel, _ := l.Selectors.Lookup(name)
				if sel == "" {
					fmt.Fprintf(w, "%s\t-\t-\n", name)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", name, sel, len(doc.Root().All(sel)))
			}
			return w.Flush()
		},
	}
}
