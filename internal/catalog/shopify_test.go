package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storefrontPayload = `{
  "data": {
    "products": {
      "edges": [
        {
          "node": {
            "id": "gid://shopify/Product/1",
            "title": "Calm Gummies",
            "description": "Chewable CBD gummies.",
            "handle": "calm-gummies",
            "productType": "Gummies",
            "tags": ["sleep", "calm"],
            "availableForSale": true,
            "priceRange": {"minVariantPrice": {"amount": "20.0", "currencyCode": "USD"}},
            "variants": {"edges": [
              {"node": {"id": "v1", "title": "30 pack", "availableForSale": true, "price": {"amount": "20.0", "currencyCode": "USD"}}}
            ]}
          }
        }
      ]
    }
  }
}`

func TestShopifyClient_FetchProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("queries and parses products", func(t *testing.T) {
		var gotToken string
		var gotVars map[string]any

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("X-Shopify-Storefront-Access-Token")

			var req graphqlRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotVars = req.Variables

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(storefrontPayload))
		}))
		defer srv.Close()

		client := NewShopifyClient(srv.URL, "sf-token")
		products, err := client.FetchProducts(ctx, 50)
		require.NoError(t, err)

		assert.Equal(t, "sf-token", gotToken)
		assert.Equal(t, float64(50), gotVars["first"])

		require.Len(t, products, 1)
		p := products[0]
		assert.Equal(t, "Calm Gummies", p.Title)
		assert.Equal(t, "calm-gummies", p.Handle)
		assert.Equal(t, []string{"sleep", "calm"}, p.Tags)
		assert.True(t, p.Available)
		assert.Equal(t, "20.0", p.Amount)
		assert.Equal(t, "USD", p.Currency)
		require.Len(t, p.Variants, 1)
		assert.Equal(t, "30 pack", p.Variants[0].Title)
	})

	t.Run("fails on non-200 responses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "throttled", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewShopifyClient(srv.URL, "sf-token").FetchProducts(ctx, 50)
		assert.Error(t, err)
	})

	t.Run("fails on GraphQL errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"errors":[{"message":"field does not exist"}]}`))
		}))
		defer srv.Close()

		_, err := NewShopifyClient(srv.URL, "sf-token").FetchProducts(ctx, 50)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "field does not exist")
	})
}
