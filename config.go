package cssvet

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benbjohnson/cssvet/transform"
	"github.com/benbjohnson/cssvet/validator"
)

// Config represents the configuration of a Processor.
type Config struct {
	// Comment retention. A comment is kept if any enabled rule keeps it.
	PreservedHeader   bool   `yaml:"preserved_header"`
	PreservePattern   string `yaml:"preserve_pattern"`
	PreserveMaxLength int    `yaml:"preserve_max_length"`

	CustomPropertyPrefix     string         `yaml:"custom_property_prefix"`
	SelectorDepthThreshold   int            `yaml:"selector_depth_threshold"`
	ExpensiveProperties      map[string]int `yaml:"expensive_properties"`
	WillChangeThreshold      int            `yaml:"will_change_threshold"`
	TransformThreshold       int            `yaml:"transform_threshold"`
	TransitionThreshold      int            `yaml:"transition_threshold"`
	FallbackThresholdPercent float64        `yaml:"fallback_threshold_percent"`

	// Names of the transform passes in the order they run.
	Passes []string `yaml:"passes"`

	Style Style `yaml:"style"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	v := validator.DefaultConfig()
	return Config{
		PreservedHeader:          true,
		CustomPropertyPrefix:     v.CustomPropertyPrefix,
		SelectorDepthThreshold:   v.SelectorDepthThreshold,
		ExpensiveProperties:      v.ExpensiveProperties,
		WillChangeThreshold:      v.WillChangeThreshold,
		TransformThreshold:       v.TransformThreshold,
		TransitionThreshold:      v.TransitionThreshold,
		FallbackThresholdPercent: v.FallbackThresholdPercent,
		Passes:                   []string{transform.CommentStripName, transform.EmptyRuleElisionName},
		Style:                    DefaultStyle(),
	}
}

// LoadConfig decodes a YAML configuration from r on top of the defaults and
// validates it. Unknown keys are rejected. Keys of expensive_properties are
// merged into the default map.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an ErrorList of *ConfigError for every invalid field.
func (c *Config) Validate() error {
	var errs ErrorList
	invalid := func(field, format string, args ...interface{}) {
		errs = append(errs, &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.PreservePattern != "" {
		if _, err := regexp.Compile(c.PreservePattern); err != nil {
			invalid("preserve_pattern", "%s", err)
		}
	}
	if c.PreserveMaxLength < 0 {
		invalid("preserve_max_length", "must not be negative")
	}
	if !strings.HasPrefix(c.CustomPropertyPrefix, "--") {
		invalid("custom_property_prefix", "%q does not start with \"--\"", c.CustomPropertyPrefix)
	}
	if c.SelectorDepthThreshold < 0 {
		invalid("selector_depth_threshold", "must not be negative")
	}
	for name, n := range c.ExpensiveProperties {
		if name == "" {
			invalid("expensive_properties", "empty property name")
		}
		if n < 0 {
			invalid("expensive_properties", "threshold for %q must not be negative", name)
		}
	}
	if c.WillChangeThreshold < 0 {
		invalid("will_change_threshold", "must not be negative")
	}
	if c.TransformThreshold < 0 {
		invalid("transform_threshold", "must not be negative")
	}
	if c.TransitionThreshold < 0 {
		invalid("transition_threshold", "must not be negative")
	}
	if c.FallbackThresholdPercent < 0 || c.FallbackThresholdPercent > 100 {
		invalid("fallback_threshold_percent", "%v is outside [0, 100]", c.FallbackThresholdPercent)
	}

	seen := make(map[string]bool)
	for _, name := range c.Passes {
		if !knownPass(name) {
			invalid("passes", "unknown pass %q", name)
		} else if seen[name] {
			invalid("passes", "pass %q is listed twice", name)
		}
		seen[name] = true
	}

	if h := c.Style.Header; h != "" && !isComment(h) {
		invalid("style.header", "must be a single /* ... */ comment")
	}
	if strings.Trim(c.Style.Indent, " \t") != "" {
		invalid("style.indent", "must only contain spaces and tabs")
	}

	return errs.err()
}

// isComment returns true if s is exactly one comment.
func isComment(s string) bool {
	return len(s) >= 4 && strings.HasPrefix(s, "/*") && strings.HasSuffix(s, "*/") &&
		!strings.Contains(s[2:len(s)-2], "*/")
}

func knownPass(name string) bool {
	for _, n := range transform.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Preserve returns the comment retention predicate of the configuration.
// It returns nil if no comment is retained.
func (c *Config) Preserve() transform.Predicate {
	var a []transform.Predicate
	if c.PreservedHeader {
		a = append(a, transform.LeadingHeader())
	}
	if c.PreservePattern != "" {
		a = append(a, transform.Matching(regexp.MustCompile(c.PreservePattern)))
	}
	if c.PreserveMaxLength > 0 {
		a = append(a, transform.MaxLength(c.PreserveMaxLength))
	}
	if len(a) == 0 {
		return nil
	}
	return transform.Any(a...)
}

// TransformPasses returns the configured passes in order.
// The configuration must be valid.
func (c *Config) TransformPasses() []transform.Pass {
	var passes []transform.Pass
	for _, name := range c.Passes {
		switch name {
		case transform.CommentStripName:
			passes = append(passes, &transform.CommentStrip{Preserve: c.Preserve()})
		case transform.EmptyRuleElisionName:
			passes = append(passes, &transform.EmptyRuleElision{})
		case transform.DedupeDeclarationsName:
			passes = append(passes, &transform.DedupeDeclarations{})
		case transform.ShortenValuesName:
			passes = append(passes, &transform.ShortenValues{})
		case transform.BalanceRepairName:
			passes = append(passes, &transform.BalanceRepair{})
		}
	}
	return passes
}

// ValidatorConfig returns the check thresholds of the configuration.
func (c *Config) ValidatorConfig() validator.Config {
	m := make(map[string]int, len(c.ExpensiveProperties))
	for k, v := range c.ExpensiveProperties {
		m[k] = v
	}
	return validator.Config{
		CustomPropertyPrefix:     c.CustomPropertyPrefix,
		SelectorDepthThreshold:   c.SelectorDepthThreshold,
		ExpensiveProperties:      m,
		WillChangeThreshold:      c.WillChangeThreshold,
		TransformThreshold:       c.TransformThreshold,
		TransitionThreshold:      c.TransitionThreshold,
		FallbackThresholdPercent: c.FallbackThresholdPercent,
	}
}
