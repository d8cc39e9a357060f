// Package api provides the HTTP transport for the shopping-list backend.
//
// # Overview
//
// The backend exposes three REST collections rooted at a configurable base URL
// (default http://127.0.0.1:8080/api):
//
//   - /categorias: product categories
//   - /produtos: products, each embedding its full category
//   - /listas: shopping lists, each owning an ordered slice of items
//
// Items have no identity of their own. They are addressed by the product id
// under /listas/{listaId}/itens/{produtoId}.
//
// # Client Usage
//
//	client, err := api.NewClient(cfg.APIURL, api.WithTimeout(cfg.Timeout))
//	if err != nil {
//		return fmt.Errorf("init api client: %w", err)
//	}
//	categorias, err := client.ListCategorias(ctx)
//
// Every request sends JSON, a User-Agent and an X-Request-ID for correlating
// with backend logs. Request bodies are validated before they are sent; an
// invalid body never reaches the network.
//
// # Error Handling
//
// Failures are returned as *Error with a Kind:
//
//   - KindNetwork: unreachable backend, timeout, cancelled context
//   - KindValidation: 4xx rejection or client-side validation failure
//   - KindReferential: delete refused because other entities reference the target
//   - KindNotFound: 404
//   - KindServer: other 5xx
//   - KindDecode: undecodable success body
//
// Message holds the backend's "message" field verbatim, or "" when the error
// body had none. Callers choose their own fallback text.
package api
