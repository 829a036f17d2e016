package cssvet

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/benbjohnson/cssvet/ast"
	"github.com/benbjohnson/cssvet/parser"
	"github.com/benbjohnson/cssvet/transform"
	"github.com/benbjohnson/cssvet/validator"
)

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger of the processor. A nil logger discards output.
func WithLogger(log *zap.Logger) Option {
	return func(p *Processor) {
		if log == nil {
			log = zap.NewNop()
		}
		p.log = log.Named("cssvet")
	}
}

// Processor parses, transforms and validates stylesheets with a fixed
// configuration. A Processor holds no per-stylesheet state and is safe for
// concurrent use.
type Processor struct {
	cfg     Config
	passes  []transform.Pass
	checks  validator.Config
	printer *Printer
	log     *zap.Logger
}

// NewProcessor returns a processor for cfg. The configuration is validated
// before anything else happens.
func NewProcessor(cfg Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Processor{
		cfg:     cfg,
		passes:  cfg.TransformPasses(),
		checks:  cfg.ValidatorConfig(),
		printer: &Printer{Style: cfg.Style},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Passes returns the transform passes in the order they run.
func (p *Processor) Passes() []transform.Pass {
	return append([]transform.Pass(nil), p.passes...)
}

// ValidatorConfig returns the configuration used by the checks.
func (p *Processor) ValidatorConfig() validator.Config {
	return p.cfg.ValidatorConfig()
}

// Parse builds the structural model of text.
func (p *Processor) Parse(text string) *ast.StyleSheet {
	ss := parser.Parse(text)
	p.log.Debug("Parsed stylesheet",
		zap.Int("bytes", len(text)),
		zap.Int("rules", ss.Rules()),
		zap.Int("diagnostics", len(ss.Diagnostics)))
	return ss
}

// Validate runs every check against text.
func (p *Processor) Validate(text string) *validator.Report {
	return p.ValidateStyleSheet(p.Parse(text))
}

// ValidateStyleSheet runs every check against ss.
func (p *Processor) ValidateStyleSheet(ss *ast.StyleSheet) *validator.Report {
	r := validator.Run(ss, p.checks)
	p.log.Debug("Validated stylesheet",
		zap.Int("findings", r.Len()),
		zap.Int("errors", len(r.Errors())),
		zap.Int("warnings", len(r.Warnings())))
	return r
}

// TransformResult holds the output of a transform and the validation of the
// stylesheet before and after it.
type TransformResult struct {
	Output     string
	InputSize  int
	OutputSize int

	// BytesRemoved is negative if the output grew.
	BytesRemoved int

	Before *validator.Report
	After  *validator.Report
}

// Transform runs the configured passes over text and prints the result.
// The output is parsed again to validate it. An error is only returned if
// the passes produced a model that cannot be printed.
func (p *Processor) Transform(text string) (*TransformResult, error) {
	ss := p.Parse(text)
	before := p.ValidateStyleSheet(ss)

	for _, pass := range p.passes {
		ss = pass.Apply(ss)
		p.log.Debug("Applied pass",
			zap.String("pass", pass.Name()),
			zap.Int("rules", ss.Rules()))
	}

	var buf bytes.Buffer
	if err := p.printer.Print(&buf, ss); err != nil {
		return nil, err
	}
	output := buf.String()
	after := p.Validate(output)

	if n, m := len(before.Errors()), len(after.Errors()); m > n && !p.repairs() {
		p.log.Warn("Transform added errors",
			zap.Int("before", n),
			zap.Int("after", m))
	}

	result := &TransformResult{
		Output:       output,
		InputSize:    len(text),
		OutputSize:   len(output),
		BytesRemoved: len(text) - len(output),
		Before:       before,
		After:        after,
	}
	p.log.Debug("Transformed stylesheet",
		zap.Int("input", result.InputSize),
		zap.Int("output", result.OutputSize),
		zap.Int("removed", result.BytesRemoved))
	return result, nil
}

// repairs returns true if a repair pass is configured.
func (p *Processor) repairs() bool {
	for _, pass := range p.passes {
		if pass.Name() == transform.BalanceRepairName {
			return true
		}
	}
	return false
}
