package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benbjohnson/cssvet"
	"github.com/benbjohnson/cssvet/internal/source"
	"github.com/benbjohnson/cssvet/token"
	"github.com/benbjohnson/cssvet/validator"
)

// checkOptions holds the flags of the check command.
type checkOptions struct {
	Info bool
}

func newCheckCmd(opts *options) *cobra.Command {
	copts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate stylesheets",
		Long: `Check runs every validation check against each stylesheet and prints
the findings. Files are checked in parallel. The command fails if any
finding has error severity.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			p, err := opts.newProcessor(log, nil)
			if err != nil {
				return err
			}

			results, err := checkFiles(cmd.Context(), p, args)
			if err != nil {
				return err
			}

			var failed bool
			w := cmd.OutOrStdout()
			for _, r := range results {
				printReport(w, r.name, r.file, r.report, copts.Info)
				if r.report.HasErrors() {
					failed = true
				}
				log.Debug("Checked stylesheet",
					zap.String("name", r.name),
					zap.Int("findings", r.report.Len()))
			}
			if failed {
				return ErrFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copts.Info, "info", false, "Also print informational findings")
	return cmd
}

// checkResult is the validation of a single stylesheet.
type checkResult struct {
	name   string
	file   *token.File
	report *validator.Report
}

// checkFiles validates every stylesheet in paths concurrently. Results are
// returned in the order of paths and then in document order.
func checkFiles(ctx context.Context, p *cssvet.Processor, paths []string) ([]checkResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	results := make([][]checkResult, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := source.Open(path)
			if err != nil {
				return err
			}
			for _, s := range f.Sources {
				results[i] = append(results[i], checkResult{
					name:   s.Name(),
					file:   token.NewFile(s.Text),
					report: p.Validate(s.Text),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var a []checkResult
	for _, r := range results {
		a = append(a, r...)
	}
	return a, nil
}

// printReport writes one line per finding followed by a summary.
func printReport(w io.Writer, name string, file *token.File, r *validator.Report, info bool) {
	for _, f := range r.Findings() {
		if f.Severity == validator.Info && !info {
			continue
		}
		if f.Span == nil {
			fmt.Fprintf(w, "%s: %s %s: %s\n", name, f.Severity, f.Category, f.Message)
			continue
		}
		fmt.Fprintf(w, "%s:%s: %s %s: %s\n", name, file.Position(f.Span.Start), f.Severity, f.Category, f.Message)
	}

	counts := r.Counts()
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Fprintf(w, "%s: %d errors, %d warnings", name, len(r.Errors()), len(r.Warnings()))
	for _, c := range categories {
		fmt.Fprintf(w, ", %s=%d", c, counts[c])
	}
	fmt.Fprintln(w)
}
