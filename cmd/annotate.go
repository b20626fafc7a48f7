package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/session"
)

// errNoComments is returned when a page has no comments to annotate.
var errNoComments = errors.New("no comments on page")

type annotateOptions struct {
	threshold int
	out       string
	wait      time.Duration
	refresh   bool
}

func newAnnotateCmd() *cobra.Command {
	var opts annotateOptions
	cmd := &cobra.Command{
		Use:   "annotate <url|file>",
		Short: "Write the page with its score histogram and filter applied",
		Long: `Annotate loads a page, adds the score histogram above its comments and,
when --threshold is given, hides and collapses comments below that score.
The resulting HTML is written to --out or stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVarP(&opts.threshold, "threshold", "t", 0, "minimum comment score to show")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().DurationVar(&opts.wait, "wait", 0, "keep reloading the page this long until comments appear")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the page cache")
	return cmd
}

func runAnnotate(cmd *cobra.Command, target string, opts annotateOptions) error {
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	l, err := e.layoutFor(target)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, doc, err := e.loader.LoadDocument(ctx, target, opts.refresh)
	if err != nil {
		return err
	}
	s := session.New(doc, l, e.logger)
	if !s.TryInit() {
		if opts.wait <= 0 {
			return errNoComments
		}
		waitCtx, cancel := context.WithTimeout(ctx, opts.wait)
		defer cancel()
		err := s.RetryEvery(waitCtx, e.cfg.RetryInterval, func(ctx context.Context) (*dom.Document, error) {
			_, doc, err := e.loader.LoadDocument(ctx, target, true)
			return doc, err
		})
		if err != nil {
			return fmt.Errorf("%w after %s", errNoComments, opts.wait)
		}
	}

	if cmd.Flags().Changed("threshold") {
		s.Presenter().Select(opts.threshold)
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.out, err)
		}
		defer f.Close()
		w = f
	}
	if err := s.Document().Render(w); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}
