package platform

import (
	_ "embed"
	"encoding/json"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed state.schema.json
var stateSchemaJSON string

var stateSchema *jsonschema.Schema

func init() {
	var err error
	stateSchema, err = jsonschema.CompileString("state.schema.json", stateSchemaJSON)
	if err != nil {
		panic("platform: compiling state schema: " + err.Error())
	}
}

// validateStateDocument checks a posted session-state JSON document
// against the embedded schema before it reaches the codec.
func validateStateDocument(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	return stateSchema.Validate(v)
}
