package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default location of the operator configuration
// document, relative to the repository root.
const DefaultConfigPath = "setup/operators_config.yaml"

// Load reads and validates the operator configuration from a YAML file.
// A missing file is a fatal setup error; the returned error unwraps to
// os.ErrNotExist so callers can give a working-directory hint.
func Load(path string) ([]Operator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read operator config %s: %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates an operator configuration document.
func LoadFromBytes(data []byte) ([]Operator, error) {
	var operators []Operator
	if err := yaml.Unmarshal(data, &operators); err != nil {
		return nil, fmt.Errorf("failed to parse operator config: %w", err)
	}

	if len(operators) == 0 {
		return nil, fmt.Errorf("operator config lists no operators")
	}

	for _, op := range operators {
		if err := op.Validate(); err != nil {
			return nil, fmt.Errorf("invalid operator config: %w", err)
		}
	}

	return operators, nil
}
