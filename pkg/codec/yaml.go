package codec

import "gopkg.in/yaml.v3"

// YAML encodes records with gopkg.in/yaml.v3.
type YAML struct{}

// Marshal serializes v to YAML bytes.
func (YAML) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal deserializes YAML bytes into v.
func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }
