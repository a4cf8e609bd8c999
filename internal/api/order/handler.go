package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
	"mincommerce/internal/pkg/middleware"
)

// OrderService define o contrato que o Handler espera da camada de Serviço.
type OrderService interface {
	PlaceOrder(ctx context.Context, request domain.OrderRequest) (domain.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]domain.Order, error)
}

// Handler agrupa os métodos de Handler de ordens.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc OrderService, log logger.Logger) *Handler {
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

// OrdersHandler despacha /api/orders: POST cria (checkout), GET lista.
func (h *Handler) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.placeOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// placeOrder lida com POST /api/orders (checkout).
// @Summary Cria uma ordem a partir do carrinho
// @Description Valida estoque item a item, congela preços e persiste o snapshot imutável da ordem.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body domain.OrderRequest true "Itens, nome e e-mail do cliente"
// @Success 201 {object} domain.Order "Ordem criada"
// @Failure 400 {object} domain.ErrorResponse "Pedido inválido ou estoque insuficiente"
// @Failure 401 {object} domain.ErrorResponse "Sessão ausente ou inválida"
// @Router /api/orders [post]
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSessionClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Sessão ausente."), http.StatusCreated)
		return
	}

	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	h.Logger.Info("Checkout iniciado.", map[string]interface{}{
		"subject": claims.SubjectID,
		"items":   len(req.Items),
	})

	created, err := h.Service.PlaceOrder(r.Context(), req)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// listOrders lida com GET /api/orders (histórico do usuário da sessão).
// O e-mail sai das claims, nunca de parâmetro do cliente.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetSessionClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Sessão ausente."), http.StatusOK)
		return
	}

	orders, err := h.Service.ListOrdersByEmail(r.Context(), claims.Email)
	h.handleServiceResponse(w, r, orders, err, http.StatusOK)
}
