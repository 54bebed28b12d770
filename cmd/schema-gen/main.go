// Schema Generator
//
// Generates JSON Schema files from the Go types the dashboard API and the
// pricing API exchange, for the browser front end's validators.
//
// Usage:
//
//	go run ./cmd/schema-gen -out ./schemas
//
// Output:
//
//	schemas/prices.json
//	schemas/groups.json
//	schemas/dashboard.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"

	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/handlers"
	"github.com/sanvivo/price-dashboard/internal/types"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

var schemaGroups = []SchemaGroup{
	{
		Name: "prices",
		Types: []any{
			types.PriceRow{},
			types.Snapshot{},
			types.TimestampIndex{},
		},
		Output: "prices.json",
	},
	{
		Name: "groups",
		Types: []any{
			groups.Record{},
			handlers.CreateGroupRequest{},
			handlers.GroupResponse{},
			handlers.GroupsResponse{},
		},
		Output: "groups.json",
	},
	{
		Name: "dashboard",
		Types: []any{
			// Request types
			handlers.SetFilterRequest{},
			handlers.SetViewModeRequest{},
			handlers.SelectGroupRequest{},
			// Response types
			handlers.RowResponse{},
			handlers.StateResponse{},
			handlers.TimestampsResponse{},
			handlers.HealthResponse{},
		},
		Output: "dashboard.json",
	},
}

func main() {
	outputDir := flag.String("out", "./schemas", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, group := range schemaGroups {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(*outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// mapDecimal describes prices as JSON numbers
func mapDecimal(t reflect.Type) *jsonschema.Schema {
	if t == decimalType {
		return &jsonschema.Schema{Type: "number"}
	}
	return nil
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{
		Mapper: mapDecimal,
	}

	definitions := make(map[string]any)

	for _, t := range group.Types {
		schema := reflector.Reflect(t)

		for name, def := range schema.Definitions {
			definitions[name] = def
		}

		// Non-struct types such as groups.Record reflect inline
		if schema.Ref == "" {
			definitions[reflect.TypeOf(t).Name()] = schema
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://sanvivo.local/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", capitalize(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s API types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

// writeSchema writes a schema to a JSON file
func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
