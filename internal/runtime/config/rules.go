package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldRule populates one field path with either a generator reference
// (Faker, e.g. "Name.first_name") or a literal Value. Literal strings may
// contain %{field} templates.
//
// Multiply repeats the rule into a sequence: nil produces a single value, 0 a
// random number of values and N exactly N values.
type FieldRule struct {
	Field    string `yaml:"field" json:"field"`
	Faker    string `yaml:"faker,omitempty" json:"faker,omitempty"`
	Value    any    `yaml:"value,omitempty" json:"value,omitempty"`
	Multiply *int   `yaml:"multiply,omitempty" json:"multiply,omitempty"`
}

// Multiplied reports whether the rule produces a sequence.
func (r FieldRule) Multiplied() bool { return r.Multiply != nil }

func (r FieldRule) String() string {
	var b strings.Builder
	b.WriteString(r.Field)
	b.WriteString(" <- ")
	if r.Faker != "" {
		b.WriteString(r.Faker)
	} else {
		fmt.Fprintf(&b, "%v", r.Value)
	}
	if r.Multiply != nil {
		fmt.Fprintf(&b, " x%d", *r.Multiply)
	}
	return b.String()
}

// Times returns a pointer to n, for building multiplied rules in code.
func Times(n int) *int { return &n }

var fieldRuleKeys = map[string]bool{"field": true, "faker": true, "value": true, "multiply": true}

// UnmarshalYAML decodes a rule keeping literal values as written: an unquoted
// scalar YAML would read as a timestamp stays the string the user typed.
func (r *FieldRule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: field rule must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := node.Content[i]; !fieldRuleKeys[key.Value] {
			return fmt.Errorf("line %d: field %s not found in field rule", key.Line, key.Value)
		}
	}

	var raw struct {
		Field    string    `yaml:"field"`
		Faker    string    `yaml:"faker"`
		Value    yaml.Node `yaml:"value"`
		Multiply *int      `yaml:"multiply"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	value, err := literal(&raw.Value)
	if err != nil {
		return fmt.Errorf("rule %q: %w", raw.Field, err)
	}
	*r = FieldRule{Field: raw.Field, Faker: raw.Faker, Value: value, Multiply: raw.Multiply}
	return nil
}

func literal(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.AliasNode:
		return literal(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			return n.Value, nil
		}
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := literal(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, err
			}
			v, err := literal(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	}
	var v any
	err := n.Decode(&v)
	return v, err
}
