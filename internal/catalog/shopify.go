package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RawProduct is a product record as returned by the commerce backend, before
// normalization into a domain.CatalogEntry.
type RawProduct struct {
	ID          string
	Title       string
	Description string
	Handle      string
	ProductType string
	Tags        []string
	Available   bool
	Amount      string
	Currency    string
	Variants    []RawVariant
}

// RawVariant is an unnormalized product variant.
type RawVariant struct {
	ID        string
	Title     string
	Amount    string
	Currency  string
	Available bool
}

// ProductFetcher fetches up to limit raw product records from the commerce
// backend. All fetches are read-only.
type ProductFetcher interface {
	FetchProducts(ctx context.Context, limit int) ([]RawProduct, error)
}

// ShopifyClient fetches the product catalog through the Shopify Storefront
// GraphQL API.
type ShopifyClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewShopifyClient creates a ShopifyClient for the given Storefront endpoint.
func NewShopifyClient(endpoint, token string) *ShopifyClient {
	return &ShopifyClient{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

const productsQuery = `query Products($first: Int!) {
  products(first: $first) {
    edges {
      node {
        id
        title
        description
        handle
        productType
        tags
        availableForSale
        priceRange {
          minVariantPrice { amount currencyCode }
        }
        variants(first: 20) {
          edges {
            node {
              id
              title
              availableForSale
              price { amount currencyCode }
            }
          }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type moneyNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type variantNode struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	AvailableForSale bool      `json:"availableForSale"`
	Price            moneyNode `json:"price"`
}

type productNode struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Handle           string   `json:"handle"`
	ProductType      string   `json:"productType"`
	Tags             []string `json:"tags"`
	AvailableForSale bool     `json:"availableForSale"`
	PriceRange       struct {
		MinVariantPrice moneyNode `json:"minVariantPrice"`
	} `json:"priceRange"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type productsResponse struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchProducts queries the Storefront API for up to limit products.
func (c *ShopifyClient) FetchProducts(ctx context.Context, limit int) ([]RawProduct, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     productsQuery,
		Variables: map[string]any{"first": limit},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal products query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create products request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read storefront response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront returned status %d: %s", resp.StatusCode, payload)
	}

	var parsed productsResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse storefront response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("storefront query error: %s", parsed.Errors[0].Message)
	}

	products := make([]RawProduct, 0, len(parsed.Data.Products.Edges))
	for _, edge := range parsed.Data.Products.Edges {
		node := edge.Node
		raw := RawProduct{
			ID:          node.ID,
			Title:       node.Title,
			Description: node.Description,
			Handle:      node.Handle,
			ProductType: node.ProductType,
			Tags:        node.Tags,
			Available:   node.AvailableForSale,
			Amount:      node.PriceRange.MinVariantPrice.Amount,
			Currency:    node.PriceRange.MinVariantPrice.CurrencyCode,
		}
		for _, v := range node.Variants.Edges {
			raw.Variants = append(raw.Variants, RawVariant{
				ID:        v.Node.ID,
				Title:     v.Node.Title,
				Amount:    v.Node.Price.Amount,
				Currency:  v.Node.Price.CurrencyCode,
				Available: v.Node.AvailableForSale,
			})
		}
		products = append(products, raw)
	}

	return products, nil
}
