package registry

import (
	_ "github.com/stubdex/stubdex/internal/codegen/generator/golang"     // Register the Go bindings backend
	_ "github.com/stubdex/stubdex/internal/codegen/generator/jsonschema" // Register the JSON Schema backend
	_ "github.com/stubdex/stubdex/internal/codegen/generator/typescript" // Register the TypeScript backend
)
