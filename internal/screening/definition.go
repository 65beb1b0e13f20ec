// Package screening loads YAML screen definitions and evaluates them against
// stored metric values.
package screening

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Supported comparison operators.
const (
	OpLessEqual    = "<="
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpGreater      = ">"
	OpEqual        = "=="
)

const (
	defaultOperator      = OpLessEqual
	defaultCriterionName = "criterion"
)

// ConfigError reports an unusable screen definition. It is fatal for the
// whole screen run.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid screen definition: %v", e.Err)
	}
	return fmt.Sprintf("invalid screen definition %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Term is one side of a criterion: a metric lookup or a constant, scaled by
// Multiplier.
type Term struct {
	Metric     string   `yaml:"metric,omitempty"`
	Value      *float64 `yaml:"value,omitempty"`
	Multiplier *float64 `yaml:"multiplier,omitempty"`
}

// Scale returns the multiplier, 1 when unset.
func (t Term) Scale() float64 {
	if t.Multiplier == nil {
		return 1
	}
	return *t.Multiplier
}

// String renders the term for logs.
func (t Term) String() string {
	base := t.Metric
	if t.Value != nil {
		base = fmt.Sprintf("%g", *t.Value)
	}
	if t.Multiplier != nil {
		return fmt.Sprintf("%g*%s", *t.Multiplier, base)
	}
	return base
}

// Criterion compares Left against Right scaled by its multiplier.
type Criterion struct {
	Name     string `yaml:"name"`
	Left     Term   `yaml:"left"`
	Operator string `yaml:"operator" validate:"oneof=<= >= < > =="`
	Right    Term   `yaml:"right"`
}

// Definition is a named list of criteria. A symbol passes when every
// criterion holds.
type Definition struct {
	Name     string      `yaml:"name,omitempty"`
	Criteria []Criterion `yaml:"criteria" validate:"dive"`
}

// MetricIDs returns the distinct metric ids the definition references, in
// first-use order.
func (d *Definition) MetricIDs() []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range d.Criteria {
		for _, t := range []Term{c.Left, c.Right} {
			if t.Metric != "" && !seen[t.Metric] {
				seen[t.Metric] = true
				out = append(out, t.Metric)
			}
		}
	}
	return out
}

// LoadDefinition reads and validates a YAML screen file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read screen %s: %w", path, err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Source = path
		}
		return nil, err
	}
	return def, nil
}

// ParseDefinition decodes YAML, applies defaults and validates the result.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &ConfigError{Err: err}
	}
	for i := range def.Criteria {
		c := &def.Criteria[i]
		if c.Name == "" {
			c.Name = defaultCriterionName
		}
		if c.Operator == "" {
			c.Operator = defaultOperator
		}
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks every criterion: each term names exactly one of metric or
// value and the operator is supported.
func (d *Definition) Validate() error {
	if err := validator.New().Struct(d); err != nil {
		return &ConfigError{Err: err}
	}
	var errs []error
	for i, c := range d.Criteria {
		if err := c.Left.validate(); err != nil {
			errs = append(errs, fmt.Errorf("criteria[%d] %q left: %w", i, c.Name, err))
		}
		if err := c.Right.validate(); err != nil {
			errs = append(errs, fmt.Errorf("criteria[%d] %q right: %w", i, c.Name, err))
		}
	}
	if len(errs) > 0 {
		return &ConfigError{Err: errors.Join(errs...)}
	}
	return nil
}

func (t Term) validate() error {
	switch {
	case t.Metric == "" && t.Value == nil:
		return errors.New("term needs a metric or a value")
	case t.Metric != "" && t.Value != nil:
		return errors.New("term has both a metric and a value")
	}
	return nil
}
