package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"mincommerce/internal/domain"
	apperror "mincommerce/internal/errors"
	"mincommerce/internal/pkg/logger"
)

// StatsService define o contrato que o Handler espera da camada de Serviço.
type StatsService interface {
	CollectStats(ctx context.Context) (domain.Stats, error)
}

// Handler agrupa os métodos de Handler do painel administrativo.
type Handler struct {
	Service StatsService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StatsService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// StatsHandler lida com GET /api/admin/stats.
// A exigência de papel admin é aplicada pelo PermissionMiddleware na rota;
// aqui só coletamos e serializamos.
// @Summary Estatísticas agregadas da loja
// @Description Totais, top produtos, vendas diárias e ordens recentes. Em falha de banco, degrada para dados de exemplo.
// @Tags admin
// @Produce json
// @Success 200 {object} domain.Stats "Estatísticas"
// @Failure 401 {object} domain.ErrorResponse "Sessão ausente ou inválida"
// @Failure 403 {object} domain.ErrorResponse "Papel insuficiente"
// @Security BearerAuth
// @Router /api/admin/stats [get]
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.Service.CollectStats(r.Context())
	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		h.Logger.Error(fmt.Sprintf("Erro ao coletar estatísticas: %s", category), err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":     status,
			"category": category,
			"message":  message,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.Logger.Error("Falha ao codificar JSON de resposta", err)
	}
}
