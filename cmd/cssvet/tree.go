package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/internal/source"
	"github.com/benbjohnson/cssvet/transform"
)

func newTreeCmd(opts *options) *cobra.Command {
	var transformed bool

	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the structural model of a stylesheet",
		Args:  cobra.ExactArgs(1),
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

			f, err := source.Open(args[0])
			if err != nil {
				return err
			}
			for _, s := range f.Sources {
				ss := p.Parse(s.Text)
				if transformed {
					ss = transform.Apply(ss, p.Passes()...)
				}
				log.Debug("Printing tree", zap.String("name", s.Name()))
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", s.Name(), ast.Dump(ss))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&transformed, "transform", "t", false, "Apply the configured passes first")
	return cmd
}
