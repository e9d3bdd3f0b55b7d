package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortspan/shortspan/internal/ratelimit"
)

// RegisterRoutes registers all URL shortener routes with per-endpoint rate
// limit configuration.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// POST / - create a short URL with a derived identifier.
	// Stricter limits for write operations.
	huma.Register(api, huma.Operation{
		OperationID: "create-short-url",
		Method:      http.MethodPost,
		Path:        "/",
		Summary:     "Create short URL",
		Description: "Stores a URL under an identifier derived from the URL and expiration; identical submissions reuse the same identifier.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
					{Window: time.Hour, Max: 300},
				},
			},
		},
	}, urlHandler.CreateShortURL)

	// PUT /{id} - store a URL under a caller-chosen identifier.
	huma.Register(api, huma.Operation{
		OperationID: "put-short-url",
		Method:      http.MethodPut,
		Path:        "/{id}",
		Summary:     "Store URL under chosen identifier",
		Description: "Stores a URL under the given identifier. Replaying an identical request returns 200; a conflicting identifier returns 409.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
					{Window: time.Hour, Max: 300},
				},
			},
		},
	}, urlHandler.PutShortURL)

	// GET /{id} - resolve and redirect.
	// Relaxed limits for high-traffic reads.
	huma.Register(api, huma.Operation{
		OperationID: "redirect-short-url",
		Method:      http.MethodGet,
		Path:        "/{id}",
		Summary:     "Redirect to the long URL",
		Description: "Redirects to the URL stored under the identifier until it expires.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, urlHandler.RedirectToURL)
}
