// Package prompt assembles the grounding prompt sent ahead of every question:
// persona and policy rules, the static company context, and a rendered product
// catalog, under fixed character budgets that bound prompt cost.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/zenberry/zenchat/internal/domain"
)

const (
	// ContextBudget caps the company-context segment of the system prompt.
	ContextBudget = 5000
	// ProductsBudget caps the rendered catalog segment of the system prompt.
	ProductsBudget = 10000

	productDescriptionLimit = 200
)

const systemTemplate = `You are Zen, the customer assistant for Zenberry, an online store for CBD wellness products.

Follow these rules in every answer:
- Never give a medical diagnosis.
- Never claim that any product treats, cures or prevents any disease.
- Always suggest consulting a qualified health professional for medical concerns.
- Answer only from the company context and product catalog below. If the answer is not there, say you do not know.
- Always answer in English, regardless of the language of the question.
- Whenever you mention a product, include its markdown link, e.g. [Product Name](url).

COMPANY CONTEXT:
{context}

PRODUCT CATALOG:
{products}`

const categoryClause = "\n\nThe customer is browsing the %q category. Prioritize products whose tags, title or description match %q."

// ContextProvider supplies the static company context blob.
type ContextProvider interface {
	GetContext() string
}

// CatalogProvider supplies the current normalized product catalog.
type CatalogProvider interface {
	GetAll(ctx context.Context) []domain.CatalogEntry
}

// Assembler builds system prompts from the two shared caches.
type Assembler struct {
	context ContextProvider
	catalog CatalogProvider
}

// NewAssembler creates an Assembler over the given providers.
func NewAssembler(contextProvider ContextProvider, catalogProvider CatalogProvider) *Assembler {
	return &Assembler{context: contextProvider, catalog: catalogProvider}
}

// BuildSystemPrompt fills the persona template with the truncated company
// context and catalog rendering. A non-empty category appends a priming clause.
func (a *Assembler) BuildSystemPrompt(ctx context.Context, category string) string {
	companyContext := clip(a.context.GetContext(), ContextBudget)
	products := clip(RenderCatalog(a.catalog.GetAll(ctx)), ProductsBudget)

	out := strings.Replace(systemTemplate, "{context}", companyContext, 1)
	out = strings.Replace(out, "{products}", products, 1)

	if category != "" {
		out += fmt.Sprintf(categoryClause, category, category)
	}

	return out
}

// RenderCatalog formats entries as one multi-line block per product.
func RenderCatalog(entries []domain.CatalogEntry) string {
	if len(entries) == 0 {
		return "No products are currently listed."
	}

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Product: %s\n", entry.Title)
		if entry.ProductType != "" {
			fmt.Fprintf(&b, "Category: %s\n", entry.ProductType)
		}
		fmt.Fprintf(&b, "Price: %s\n", entry.PriceDisplay)
		fmt.Fprintf(&b, "Availability: %s\n", marker(entry.Available))
		fmt.Fprintf(&b, "Link: %s\n", entry.URL)
		if entry.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", clipEllipsis(entry.Description, productDescriptionLimit))
		}
		if len(entry.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(entry.Tags, ", "))
		}
	}
	return b.String()
}

// clip is a hard character cut; budgets are behavioral limits, not word
// boundaries.
func clip(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	return s[:budget]
}

func clipEllipsis(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func marker(available bool) string {
	if available {
		return "✓ In stock"
	}
	return "✗ Out of stock"
}
