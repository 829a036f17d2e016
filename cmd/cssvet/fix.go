package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benbjohnson/cssvet"
	"github.com/benbjohnson/cssvet/internal/source"
	"github.com/benbjohnson/cssvet/transform"
)

// fixOptions holds the flags of the fix command.
type fixOptions struct {
	Output  string
	Write   bool
	Compact bool
	Repair  bool
	Passes  []string
	MaxSize int
}

func newFixCmd(opts *options) *cobra.Command {
	fopts := &fixOptions{}

	cmd := &cobra.Command{
		Use:   "fix FILE...",
		Short: "Apply transform passes and print the result",
		Long: `Fix applies the configured transform passes to each stylesheet and
writes the printed result to standard output, to --output, or back to the
input files with --write. Stylesheets inside HTML files are replaced in place.

The command fails if the printed stylesheets of a file are larger than
--max-size bytes. For HTML files only the <style> contents are counted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fopts.Output != "" && len(args) > 1 {
				return errors.New("--output requires a single input file")
			}
			if fopts.Output != "" && fopts.Write {
				return errors.New("--output and --write cannot be combined")
			}

			log, err := opts.newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			p, err := opts.newProcessor(log, fopts.apply)
			if err != nil {
				return err
			}

			results, err := fixFiles(cmd.Context(), p, args)
			if err != nil {
				return err
			}

			var failed bool
			for _, r := range results {
				if err := fopts.write(cmd.OutOrStdout(), r); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d -> %d bytes (%d removed)\n", r.path, r.inputSize, len(r.output), r.inputSize-len(r.output))

				if fopts.MaxSize > 0 && r.cssSize > fopts.MaxSize {
					log.Warn("Output exceeds size target",
						zap.String("path", r.path),
						zap.Int("size", r.cssSize),
						zap.Int("max", fopts.MaxSize))
					failed = true
				}
				if r.errors > 0 {
					log.Warn("Output has validation errors",
						zap.String("path", r.path),
						zap.Int("errors", r.errors))
				}
			}
			if failed {
				return ErrFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&fopts.Output, "output", "o", "", "Output file path (default: standard output)")
	cmd.Flags().BoolVarP(&fopts.Write, "write", "w", false, "Write the result back to the input files")
	cmd.Flags().BoolVar(&fopts.Compact, "compact", false, "Drop all optional whitespace")
	cmd.Flags().BoolVar(&fopts.Repair, "repair", false, "Close blocks left open at the end of input")
	cmd.Flags().StringSliceVar(&fopts.Passes, "passes", nil, "Transform passes to run, in order")
	cmd.Flags().IntVar(&fopts.MaxSize, "max-size", 0, "Fail if the printed CSS of a file is larger than this many bytes")
	return cmd
}

// apply overrides the configuration with the command flags.
func (o *fixOptions) apply(cfg *cssvet.Config) {
	if len(o.Passes) > 0 {
		cfg.Passes = o.Passes
	}
	if o.Repair && !slices.Contains(cfg.Passes, transform.BalanceRepairName) {
		cfg.Passes = append(slices.Clone(cfg.Passes), transform.BalanceRepairName)
	}
	if o.Compact {
		cfg.Style.Compact = true
	}
}

// write writes the output of a fixed file to its destination.
func (o *fixOptions) write(stdout io.Writer, r fixResult) error {
	switch {
	case o.Write && r.path != source.Stdin:
		return os.WriteFile(r.path, []byte(r.output), 0o666)
	case o.Output != "":
		return os.WriteFile(o.Output, []byte(r.output), 0o666)
	default:
		_, err := io.WriteString(stdout, r.output)
		return err
	}
}

// fixResult is the transformed contents of a single file.
type fixResult struct {
	path      string
	inputSize int    // length of the whole input file
	output    string // new contents of the whole file
	cssSize   int    // length of the printed stylesheets
	errors    int    // validation errors in the output
}

// fixFiles transforms the stylesheets of every file concurrently. Results are
// returned in the order of paths.
func fixFiles(ctx context.Context, p *cssvet.Processor, paths []string) ([]fixResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	results := make([]fixResult, len(paths))
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

			r := fixResult{path: path, inputSize: f.Size}
			output, err := f.Rewrite(func(s *source.Source) (string, error) {
				result, err := p.Transform(s.Text)
				if err != nil {
					return "", fmt.Errorf("%s: %w", s.Name(), err)
				}
				r.cssSize += result.OutputSize
				r.errors += len(result.After.Errors())
				return result.Output, nil
			})
			if err != nil {
				return err
			}
			r.output = output
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
