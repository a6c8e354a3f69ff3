package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// generateSchema reflects an input struct into the JSON-schema properties map
// sent with the tool declaration.
func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema.Properties)
	if err != nil {
		return map[string]interface{}{}
	}
	var properties map[string]interface{}
	if err := json.Unmarshal(raw, &properties); err != nil {
		return map[string]interface{}{}
	}
	return properties
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
