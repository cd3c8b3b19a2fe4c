package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlexBool is a toggle that accepts YAML booleans as well as the usual
// spellings of on/off ("on", "yes", "enabled", 1, 0.0, ...).
type FlexBool bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (fb *FlexBool) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: toggle must be a scalar", node.Line)
	}
	v, ok := parseToggle(node.Value)
	if !ok {
		return fmt.Errorf("line %d: cannot interpret %q as a toggle", node.Line, node.Value)
	}
	*fb = FlexBool(v)
	return nil
}

// Bool returns the plain boolean value.
func (fb FlexBool) Bool() bool {
	return bool(fb)
}

func parseToggle(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "yes", "y", "enabled":
		return true, true
	case "false", "off", "no", "n", "disabled":
		return false, true
	}
	// Numbers: anything non-zero is on.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, false
	}
	return f != 0, true
}
