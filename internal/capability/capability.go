// Package capability exposes the closed set of assistant capabilities as a
// fixed lookup table. Dispatch is exhaustive over the known names; there is no
// reflection and no open-ended registration.
package capability

import (
	"context"
	"encoding/json"
	"fmt"
)

// Name identifies one capability.
type Name string

// The complete capability set.
const (
	SearchProducts      Name = "searchProducts"
	GetSiteSection      Name = "getSiteSection"
	CalculateDosageHint Name = "calculateDosageHint"
	GetFullContext      Name = "getFullContext"
)

// ErrUnknownCapability is returned for names outside the fixed set.
var ErrUnknownCapability = fmt.Errorf("unknown capability")

// ProductSearcher runs a keyword search over the product catalog.
type ProductSearcher interface {
	Search(ctx context.Context, keywords string) string
}

// KnowledgeReader reads from the static knowledge context.
type KnowledgeReader interface {
	GetContext() string
	GetSection(name string) string
}

// Definition describes one capability for function-calling engines.
type Definition struct {
	Name        Name
	Description string
	Parameters  map[string]any
}

// Registry binds the capability set to its collaborators.
type Registry struct {
	products  ProductSearcher
	knowledge KnowledgeReader
}

// NewRegistry creates a Registry over the given collaborators.
func NewRegistry(products ProductSearcher, knowledge KnowledgeReader) *Registry {
	return &Registry{products: products, knowledge: knowledge}
}

// Definitions returns the fixed capability descriptions in a stable order.
func (r *Registry) Definitions() []Definition {
	return []Definition{
		{
			Name:        SearchProducts,
			Description: "Search the Zenberry product catalog by keywords and return matching products with prices and links.",
			Parameters: objectSchema(map[string]any{
				"keywords": map[string]any{"type": "string", "description": "Whitespace-separated search keywords."},
			}, []string{"keywords"}),
		},
		{
			Name:        GetSiteSection,
			Description: "Look up one named section of the Zenberry company knowledge base.",
			Parameters: objectSchema(map[string]any{
				"name": map[string]any{"type": "string", "description": "Section heading to look up."},
			}, []string{"name"}),
		},
		{
			Name:        CalculateDosageHint,
			Description: "Suggest a conservative CBD serving range from body weight and desired effect strength. Informational only.",
			Parameters: objectSchema(map[string]any{
				"weight_kg": map[string]any{"type": "number", "description": "Body weight in kilograms."},
				"severity":  map[string]any{"type": "string", "enum": []string{"mild", "moderate", "strong"}},
			}, []string{"weight_kg"}),
		},
		{
			Name:        GetFullContext,
			Description: "Return the full Zenberry company knowledge context.",
			Parameters:  objectSchema(map[string]any{}, nil),
		},
	}
}

type searchArgs struct {
	Keywords string `json:"keywords"`
}

type sectionArgs struct {
	Section string `json:"name"`
}

type dosageArgs struct {
	WeightKg float64 `json:"weight_kg"`
	Severity string  `json:"severity"`
}

// Invoke dispatches a capability by name. Unknown names are an error, never a
// silent no-op.
func (r *Registry) Invoke(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	switch Name(name) {
	case SearchProducts:
		var args searchArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return "", err
		}
		return r.products.Search(ctx, args.Keywords), nil

	case GetSiteSection:
		var args sectionArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return "", err
		}
		return r.knowledge.GetSection(args.Section), nil

	case CalculateDosageHint:
		var args dosageArgs
		if err := unmarshalArgs(arguments, &args); err != nil {
			return "", err
		}
		return DosageHint(args.WeightKg, args.Severity), nil

	case GetFullContext:
		return r.knowledge.GetContext(), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, name)
	}
}

func unmarshalArgs(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("invalid capability arguments: %w", err)
	}
	return nil
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
