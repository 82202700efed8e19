package config

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the configuration file. Property names
// follow the YAML keys.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
	}

	schema := reflector.Reflect(&Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "nsmd Configuration"
	schema.Description = "Configuration schema for the nsmd location service"
	return schema
}
