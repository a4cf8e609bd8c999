package cartsync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"mincommerce/internal/domain"
)

// Este pacote implementa o lado cliente do protocolo de sincronização do
// carrinho: um estado local espelhando o carrinho persistido por usuário,
// com carga read-through no login e write-through best-effort em cada mutação.

// Product é o produto como chega do catálogo. O campo ID é deliberadamente
// não tipado: o catálogo serializa a chave como número, enquanto as linhas
// persistidas do carrinho a devolvem como string. NormalizeID reconcilia
// as duas representações.
type Product struct {
	ID          interface{} `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	ImageURL    string      `json:"imageUrl"`
	Category    string      `json:"category"`
	Stock       int         `json:"stock"`
}

// NormalizeID converte qualquer representação de chave de produto
// (string, inteiro, float64 vindo de JSON, json.Number) para a forma
// canônica string. Comparações de itens do carrinho usam SEMPRE esta forma,
// senão "7" e 7 viram duas entradas do mesmo produto.
func NormalizeID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// JSON decodifica números como float64
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Persistence é o contrato da API de persistência do carrinho consumido pelo
// Store. A implementação concreta é o APIClient (HTTP); os testes injetam mocks.
type Persistence interface {
	// Fetch lista as linhas persistidas do subject, enriquecidas com os dados do produto.
	Fetch(ctx context.Context) ([]domain.CartItem, error)
	// Add cria a linha ou incrementa a quantidade existente (chaveada por produto).
	Add(ctx context.Context, productID string, quantity int) error
	// SetQuantity sobrescreve a quantidade (≤0 remove a linha no servidor).
	SetQuantity(ctx context.Context, productID string, quantity int) error
	// Remove apaga a linha de um produto.
	Remove(ctx context.Context, productID string) error
	// Clear apaga todas as linhas do subject.
	Clear(ctx context.Context) error
}
