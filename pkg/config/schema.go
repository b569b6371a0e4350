package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/panbanda/elide/schema/config.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse embedded schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// ValidateFile checks the raw document at path against the configuration
// schema. It catches what unmarshalling silently ignores, such as unknown
// keys and values of the wrong type.
func ValidateFile(path string) error {
	k, err := loadRaw(path)
	if err != nil {
		return err
	}
	return validateDocument(k.Raw())
}

func validateDocument(raw map[string]any) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so TOML and YAML values take JSON types.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
