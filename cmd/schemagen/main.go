// Command schemagen writes the JSON Schema of every effect configuration,
// for editors and tools that talk to the inspector.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/iburimskiy/backdrop/internal/schema"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "-out is required")
		os.Exit(1)
	}

	doc, err := buildSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build schema: %v\n", err)
		os.Exit(1)
	}
	if err := writeSchema(outPath, doc); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

// buildSchema reflects each effect config. The root accepts any one of
// them; each variant is also listed under definitions by kind.
func buildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Backdrop Effect Configuration",
		Description: "Configuration accepted by the instance registry for each effect kind.",
		Definitions: jsonschema.Definitions{},
	}
	for _, kind := range schema.Kinds() {
		cfg, ok := schema.Default(kind)
		if !ok {
			return nil, fmt.Errorf("no default for %s", kind)
		}
		s := reflector.ReflectFromType(reflect.TypeOf(cfg))
		if s == nil {
			return nil, fmt.Errorf("failed to reflect %s", kind)
		}
		s.Version = ""
		s.Title = string(kind)
		root.Definitions[string(kind)] = s
		root.OneOf = append(root.OneOf, &jsonschema.Schema{Ref: "#/definitions/" + string(kind)})
	}
	return root, nil
}

func writeSchema(outPath string, doc *jsonschema.Schema) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
