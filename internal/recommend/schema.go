package recommend

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
)

var recommendationsSchema = generateSchema[Recommendations]()

// generateSchema reflects T into the strict subset of JSON schema accepted by
// OpenAI structured outputs: no additional properties and every property
// required.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var schema map[string]any
	if err := json.Unmarshal(b, &schema); err != nil {
		panic(err)
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	strictify(schema)
	return schema
}

func strictify(schema map[string]any) {
	props, _ := schema["properties"].(map[string]any)
	if t, _ := schema["type"].(string); t == "object" {
		schema["additionalProperties"] = false
		required := make([]string, 0, len(props))
		for name := range props {
			required = append(required, name)
		}
		sort.Strings(required)
		if len(required) > 0 {
			schema["required"] = required
		}
	}
	for _, p := range props {
		if pm, ok := p.(map[string]any); ok {
			strictify(pm)
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		strictify(items)
	}
}
