package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benbjohnson/cssvet"
)

// ErrFailed is returned when a command completed but found problems.
var ErrFailed = errors.New("cssvet: problems found")

// options holds the flags shared by all subcommands.
type options struct {
	ConfigPath string
	Verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cssvet",
		Short: "Validate and shrink CSS stylesheets",
		Long: `cssvet parses a stylesheet once into a structural model, validates it
and applies size-reducing transform passes to it.

Files ending in .html or .htm are scanned for <style> elements. A path of "-"
reads CSS from standard input.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newFixCmd(opts))
	cmd.AddCommand(newTreeCmd(opts))
	return cmd
}

// newLogger returns a development logger in verbose mode and a production
// logger otherwise.
func (o *options) newLogger() (*zap.Logger, error) {
	if o.Verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadConfig reads the configuration file, if one was given.
func (o *options) loadConfig() (cssvet.Config, error) {
	if o.ConfigPath == "" {
		return cssvet.DefaultConfig(), nil
	}
	f, err := os.Open(o.ConfigPath)
	if err != nil {
		return cssvet.Config{}, err
	}
	defer f.Close()

	cfg, err := cssvet.LoadConfig(f)
	if err != nil {
		return cssvet.Config{}, fmt.Errorf("%s: %w", o.ConfigPath, err)
	}
	return cfg, nil
}

// newProcessor builds a processor from the configuration file. The caller
// may adjust the configuration before it is validated.
func (o *options) newProcessor(log *zap.Logger, fn func(*cssvet.Config)) (*cssvet.Processor, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if fn != nil {
		fn(&cfg)
	}
	return cssvet.NewProcessor(cfg, cssvet.WithLogger(log))
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		var cerr *cssvet.ConfigError
		if errors.As(err, &cerr) {
			fmt.Fprintln(os.Stderr, "check the configuration file or flags")
		}
		os.Exit(1)
	}
}
