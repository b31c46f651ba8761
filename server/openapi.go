package server

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.json
var openapiDocument []byte

// OpenAPIDocument returns the raw document describing the daemon's routes.
func OpenAPIDocument() ([]byte, error) {
	return openapiDocument, nil
}

// LoadOpenAPI parses and validates the embedded document.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiDocument)
	if err != nil {
		return nil, fmt.Errorf("server: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("server: invalid openapi document: %w", err)
	}
	return doc, nil
}
