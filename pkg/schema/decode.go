package schema

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Decode parses a workflow definition from JSON or YAML bytes. JSON is
// detected by the leading byte; everything else goes through the YAML path
// (YAML is a superset of JSON, but the stdlib decoder gives better errors
// for documents that are actually JSON).
func Decode(data []byte) (*Definition, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, NewError(ErrCodeDecode, "empty workflow document")
	}

	var def Definition
	if trimmed[0] == '{' {
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, NewError(ErrCodeDecode, "invalid JSON workflow document").WithCause(err)
		}
		return &def, nil
	}

	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, NewError(ErrCodeDecode, "invalid YAML workflow document").WithCause(err)
	}
	return &def, nil
}

// EncodeJSON renders a definition as indented JSON.
func EncodeJSON(def *Definition) ([]byte, error) {
	b, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return nil, NewError(ErrCodeDecode, "encode workflow definition").WithCause(err)
	}
	return b, nil
}
