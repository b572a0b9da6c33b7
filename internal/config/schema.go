// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// SchemaID is the $id of the configuration schema.
const SchemaID = "https://cuppa.dev/schemas/config.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	errSchema      error
)

// GenerateSchema generates a JSON Schema from the Config struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Config{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "cuppa configuration"
	schema.Description = "Schema for cuppa.yaml configuration files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fault.Wrapf(fault.Internal, err, "failed to marshal schema")
	}
	return data, nil
}

// ValidateSchema validates YAML data against the configuration schema.
// An empty document is valid: every key is optional.
func ValidateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fault.Wrapf(fault.BadConfig, err, "invalid YAML")
	}
	if doc == nil {
		return nil
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return fault.Wrapf(fault.BadConfig, err, "schema validation failed")
	}
	return nil
}

// ValidateFile reads and validates a configuration file.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return fault.Wrapf(fault.BadConfig, err, "cannot read config file "+path)
	}
	if err := ValidateSchema(data); err != nil {
		return oops.With("path", path).Wrap(err)
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaCompiled, errSchema = compileSchema()
	})
	return schemaCompiled, errSchema
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, fault.Wrapf(fault.Internal, err, "failed to parse schema JSON")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("config.schema.json", schemaData); err != nil {
		return nil, fault.Wrapf(fault.Internal, err, "failed to add schema resource")
	}
	sch, err := c.Compile("config.schema.json")
	if err != nil {
		return nil, fault.Wrapf(fault.Internal, err, "failed to compile schema")
	}
	return sch, nil
}

// toJSONTypes converts yaml.v3 output into JSON-shaped values. Mappings
// with non-string keys are stringified, as JSON objects require.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = toJSONTypes(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[fmt.Sprint(k)] = toJSONTypes(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = toJSONTypes(v)
		}
		return out
	default:
		return val
	}
}
