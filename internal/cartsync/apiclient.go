package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mincommerce/internal/domain"
)

// APIClient é a implementação HTTP do contrato Persistence, falando com a
// API de carrinho do servidor (/api/cart). A sessão vai no header
// Authorization; timeouts ficam por conta dos defaults do transporte.
type APIClient struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// NewAPIClient cria o cliente da API de carrinho para uma sessão.
func NewAPIClient(baseURL string, sessionToken string) *APIClient {
	return &APIClient{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient:   http.DefaultClient,
	}
}

// Fetch implementa GET /api/cart.
func (c *APIClient) Fetch(ctx context.Context) ([]domain.CartItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cart", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /api/cart retornou status %d", resp.StatusCode)
	}

	var items []domain.CartItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// Add implementa POST /api/cart (create-or-increment).
func (c *APIClient) Add(ctx context.Context, productID string, quantity int) error {
	body := domain.CartAddRequest{ProductID: productID, Quantity: quantity}
	return c.send(ctx, http.MethodPost, c.baseURL+"/api/cart", body)
}

// SetQuantity implementa PUT /api/cart/{productId}.
func (c *APIClient) SetQuantity(ctx context.Context, productID string, quantity int) error {
	body := domain.CartQuantityRequest{Quantity: quantity}
	return c.send(ctx, http.MethodPut, c.baseURL+"/api/cart/"+productID, body)
}

// Remove implementa DELETE /api/cart/{productId}.
func (c *APIClient) Remove(ctx context.Context, productID string) error {
	return c.send(ctx, http.MethodDelete, c.baseURL+"/api/cart/"+productID, nil)
}

// Clear implementa DELETE /api/cart (todas as linhas do subject).
func (c *APIClient) Clear(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, c.baseURL+"/api/cart", nil)
}

// send monta e dispara uma requisição mutadora, validando apenas o status.
func (c *APIClient) send(ctx context.Context, method string, url string, payload interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(encoded)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s retornou status %d", method, url, resp.StatusCode)
	}
	return nil
}

func (c *APIClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	return c.httpClient.Do(req)
}
