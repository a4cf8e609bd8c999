package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/middleware"
)

// CartService define o contrato que o Handler espera da camada de Serviço.
type CartService interface {
	GetCart(ctx context.Context, subjectID string) ([]domain.CartItem, error)
	AddToCart(ctx context.Context, subjectID string, productID string, quantity int) (domain.CartItem, error)
	UpdateQuantity(ctx context.Context, subjectID string, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, subjectID string, productID string) error
	ClearCart(ctx context.Context, subjectID string) error
}

// Handler agrupa os métodos de Handler da API de carrinho.
// Todas as rotas exigem sessão (o AuthMiddleware roda antes): a ausência de
// subject nunca chega até aqui.
type Handler struct {
	Service CartService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CartService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// subject extrai o subject autenticado do contexto.
func (h *Handler) subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetSessionClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Sessão ausente."), http.StatusOK)
		return "", false
	}
	return claims.SubjectID, true
}

// CollectionHandler despacha /api/cart (sem id): GET lista, POST adiciona,
// DELETE limpa tudo.
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getCart(w, r)
	case http.MethodPost:
		h.addToCart(w, r)
	case http.MethodDelete:
		h.clearCart(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ItemHandler despacha /api/cart/{productId}: PUT atualiza quantidade,
// DELETE remove o item.
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimPrefix(r.URL.Path, "/api/cart/")
	if productID == "" || strings.Contains(productID, "/") {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O ID do produto é obrigatório."), http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateQuantity(w, r, productID)
	case http.MethodDelete:
		h.removeFromCart(w, r, productID)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// getCart lida com GET /api/cart.
// @Summary Lista o carrinho do usuário autenticado
// @Description Retorna as linhas persistidas do carrinho, enriquecidas com os dados atuais do produto.
// @Tags cart
// @Produce json
// @Success 200 {array} domain.CartItem "Itens do carrinho"
// @Failure 401 {object} domain.ErrorResponse "Sessão ausente ou inválida"
// @Router /api/cart [get]
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	items, err := h.Service.GetCart(r.Context(), subjectID)
	h.handleServiceResponse(w, r, items, err, http.StatusOK)
}

// addToCart lida com POST /api/cart (create-or-increment).
// @Summary Adiciona um produto ao carrinho
// @Description Cria a linha (subject, product) ou incrementa a quantidade existente.
// @Tags cart
// @Accept json
// @Produce json
// @Param item body domain.CartAddRequest true "Produto e quantidade"
// @Success 200 {object} domain.CartItem "Item resultante"
// @Failure 400 {object} domain.ErrorResponse "Produto ou quantidade inválidos"
// @Failure 401 {object} domain.ErrorResponse "Sessão ausente ou inválida"
// @Failure 404 {object} domain.ErrorResponse "Produto não existe"
// @Router /api/cart [post]
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req domain.CartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1 // O POST sem quantidade explícita adiciona uma unidade
	}

	item, err := h.Service.AddToCart(r.Context(), subjectID, req.ProductID, req.Quantity)
	h.handleServiceResponse(w, r, item, err, http.StatusOK)
}

// updateQuantity lida com PUT /api/cart/{productId}.
func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request, productID string) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req domain.CartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	err := h.Service.UpdateQuantity(r.Context(), subjectID, productID, req.Quantity)
	h.handleServiceResponse(w, r, map[string]string{"message": "Quantidade atualizada."}, err, http.StatusOK)
}

// removeFromCart lida com DELETE /api/cart/{productId}.
func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request, productID string) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	err := h.Service.RemoveFromCart(r.Context(), subjectID, productID)
	h.handleServiceResponse(w, r, map[string]string{"message": "Item removido do carrinho."}, err, http.StatusOK)
}

// clearCart lida com DELETE /api/cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}

	err := h.Service.ClearCart(r.Context(), subjectID)
	h.handleServiceResponse(w, r, map[string]string{"message": "Carrinho limpo."}, err, http.StatusOK)
}
