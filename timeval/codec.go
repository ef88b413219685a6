// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package timeval

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/go-core-stack/capacity/errors"
)

// UnmarshalYAML accepts either the duration grammar ("1h30min")
// or a bare number of milliseconds.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Wrapf(errors.InvalidArgument, "line %d: duration must be a scalar", node.Line)
	}
	if ms, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*v = Millis(ms)
		return nil
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return errors.Wrapf(errors.InvalidArgument, "line %d: %s", node.Line, err)
	}
	*v = parsed
	return nil
}

// MarshalYAML renders the value in the duration grammar.
func (v Value) MarshalYAML() (any, error) {
	return v.String(), nil
}

// MarshalText renders the value in the duration grammar.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses the duration grammar.
func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
