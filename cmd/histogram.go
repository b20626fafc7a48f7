package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/fragmede/habrscore/internal/api"
	"github.com/fragmede/habrscore/internal/comments"
	"github.com/fragmede/habrscore/internal/dom"
)

// pageHistogram is the histogram of one page.
type pageHistogram struct {
	Target  string            `json:"target"`
	Title   string            `json:"title,omitempty"`
	Layout  string            `json:"layout,omitempty"`
	Total   int               `json:"total"`
	Buckets []comments.Bucket `json:"buckets"`
	Error   string            `json:"error,omitempty"`
}

func newHistogramCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "histogram <url|file>...",
		Short: "Print the comment score histogram of pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			pages, errs := e.loader.LoadAll(cmd.Context(), args)
			results := make([]pageHistogram, len(args))
			failed := 0
			for i, target := range args {
				results[i] = pageHistogram{Target: target, Buckets: []comments.Bucket{}}
				if errs[i] == nil {
					errs[i] = e.histogram(&results[i], pages[i])
				}
				if errs[i] != nil {
					failed++
					results[i].Error = errs[i].Error()
					e.logger.Error("histogram", slog.String("target", target), slog.String("error", errs[i].Error()))
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return fmt.Errorf("encoding histograms: %w", err)
				}
			} else {
				writeHistograms(cmd.OutOrStdout(), results)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pages failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (e *env) histogram(out *pageHistogram, page *api.Page) error {
	doc, err := dom.Parse(bytes.NewReader(page.HTML))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", out.Target, err)
	}
	l, err := e.layoutFor(out.Target)
	if err != nil {
		return err
	}
	hist := comments.Histogram{}
	comments.NewBuilder(doc, l).Build(doc.Root().First(l.Selectors.ListComments), hist)

	out.Title = page.Title
	out.Layout = string(l.Variant)
	out.Total = hist.Total()
	out.Buckets = hist.Sorted()
	return nil
}

func writeHistograms(w io.Writer, results []pageHistogram) {
	for _, r := range results {
		name := r.Target
		if r.Title != "" {
			name = r.Title + " (" + r.Target + ")"
		}
		if r.Error != "" {
			fmt.Fprintf(w, "%s\n  error: %s\n", name, r.Error)
			continue
		}
		labels := make([]string, 0, len(r.Buckets))
		for _, b := range r.Buckets {
			labels = append(labels, b.Label())
		}
		fmt.Fprintf(w, "%s\n  %d comments: %s\n", name, r.Total, strings.Join(labels, " "))
	}
}
