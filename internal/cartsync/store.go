package cartsync

import (
	"context"
	"sync"

	"mincommerce/internal/domain"
	"mincommerce/internal/pkg/logger"
)

// Store é o estado local do carrinho de UM usuário. Ele é construído uma vez
// por sessão com o cliente de persistência injetado (nada de estado global),
// aplica mutações otimisticamente e compensa com rollback quando a escrita
// remota falha. Erros de persistência são logados, nunca propagados ao
// chamador: a UI continua mostrando o estado restaurado.
type Store struct {
	mu          sync.Mutex
	subjectID   string
	items       []domain.CartItem
	persistence Persistence
	snapshot    Snapshot // opcional; persiste o estado local entre sessões
	log         logger.Logger
}

// NewStore cria o Store do subject com as dependências injetadas.
// snapshot pode ser nil quando não há persistência local.
func NewStore(subjectID string, persistence Persistence, snapshot Snapshot, log logger.Logger) *Store {
	return &Store{
		subjectID:   subjectID,
		persistence: persistence,
		snapshot:    snapshot,
		log:         log,
	}
}

// LoadFromSnapshot restaura o estado local a partir do snapshot gravado (a
// hidratação do storage do cliente na abertura da sessão). Sem snapshot
// configurado, ou em falha de leitura, o carrinho começa vazio.
func (s *Store) LoadFromSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}

	items, err := s.snapshot.Load(ctx, s.subjectID)
	if err != nil {
		s.log.Debug("Falha ao ler snapshot local do carrinho; começando vazio.", map[string]interface{}{
			"subject": s.subjectID,
			"error":   err.Error(),
		})
		return
	}

	s.mu.Lock()
	s.items = normalizeItems(items)
	s.mu.Unlock()
}

// LoadFromPersistent busca todas as linhas persistidas do subject e substitui
// o carrinho local por inteiro. Chamado uma vez quando a identidade fica
// disponível (login), não a cada interação. Em falha, o estado local
// permanece no último valor conhecido.
func (s *Store) LoadFromPersistent(ctx context.Context) {
	items, err := s.persistence.Fetch(ctx)
	if err != nil {
		s.log.Warn("Falha ao carregar carrinho persistido; mantendo estado local.", map[string]interface{}{
			"subject": s.subjectID,
			"error":   err.Error(),
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = normalizeItems(items)
	s.saveSnapshot(ctx)
}

// AddItem adiciona o produto ao carrinho (ou incrementa a quantidade, se já
// existe), normalizando o id para string. Quantidade não positiva é no-op:
// o invariante do carrinho proíbe quantidades ≤ 0.
func (s *Store) AddItem(ctx context.Context, product Product, quantity int) {
	if quantity <= 0 {
		return
	}

	normalizedID := NormalizeID(product.ID)

	s.mutate(ctx,
		func(items []domain.CartItem) []domain.CartItem {
			for i := range items {
				if items[i].ID == normalizedID {
					items[i].Quantity += quantity
					return items
				}
			}
			return append(items, domain.CartItem{
				ID:       normalizedID,
				Name:     product.Name,
				Price:    product.Price,
				ImageURL: product.ImageURL,
				Category: product.Category,
				Stock:    product.Stock,
				Quantity: quantity,
			})
		},
		func(ctx context.Context) error {
			return s.persistence.Add(ctx, normalizedID, quantity)
		},
	)
}

// RemoveItem remove a entrada do produto do carrinho local e da persistência.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	normalizedID := NormalizeID(productID)

	s.mutate(ctx,
		func(items []domain.CartItem) []domain.CartItem {
			filtered := items[:0]
			for _, item := range items {
				if item.ID != normalizedID {
					filtered = append(filtered, item)
				}
			}
			return filtered
		},
		func(ctx context.Context) error {
			return s.persistence.Remove(ctx, normalizedID)
		},
	)
}

// UpdateQuantity sobrescreve a quantidade de um item. Quantidade ≤ 0
// equivale a remoção (nunca se armazena zero).
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	normalizedID := NormalizeID(productID)

	if quantity <= 0 {
		s.mutate(ctx,
			func(items []domain.CartItem) []domain.CartItem {
				filtered := items[:0]
				for _, item := range items {
					if item.ID != normalizedID {
						filtered = append(filtered, item)
					}
				}
				return filtered
			},
			func(ctx context.Context) error {
				return s.persistence.SetQuantity(ctx, normalizedID, quantity)
			},
		)
		return
	}

	s.mutate(ctx,
		func(items []domain.CartItem) []domain.CartItem {
			for i := range items {
				if items[i].ID == normalizedID {
					items[i].Quantity = quantity
				}
			}
			return items
		},
		func(ctx context.Context) error {
			return s.persistence.SetQuantity(ctx, normalizedID, quantity)
		},
	)
}

// Clear esvazia o estado local imediatamente e dispara a limpeza remota.
// A limpeza local é autoritativa (pós-checkout, por exemplo): falha remota
// é apenas logada, sem rollback.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.saveSnapshot(ctx)
	s.mu.Unlock()

	if err := s.persistence.Clear(ctx); err != nil {
		s.log.Warn("Falha ao limpar carrinho persistido (limpeza local mantida).", map[string]interface{}{
			"subject": s.subjectID,
			"error":   err.Error(),
		})
	}
}

// SyncOnLogout empurra o carrinho local inteiro para a persistência quando a
// identidade transiciona de presente para ausente: apaga todas as linhas do
// subject e reinsere cada item local (substituição total, não diff).
// Best-effort: falhas são logadas e ignoradas.
func (s *Store) SyncOnLogout(ctx context.Context) {
	s.mu.Lock()
	items := cloneItems(s.items)
	s.mu.Unlock()

	if err := s.persistence.Clear(ctx); err != nil {
		s.log.Warn("Falha ao limpar carrinho persistido no logout.", map[string]interface{}{
			"subject": s.subjectID,
			"error":   err.Error(),
		})
		return
	}

	for _, item := range items {
		if err := s.persistence.Add(ctx, item.ID, item.Quantity); err != nil {
			s.log.Warn("Falha ao reinserir item no logout.", map[string]interface{}{
				"subject": s.subjectID,
				"product": item.ID,
				"error":   err.Error(),
			})
		}
	}
}

// Items retorna uma cópia do estado local atual.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Count retorna o total de unidades no carrinho (soma das quantidades).
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice retorna o valor total do carrinho.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// mutate é o executor genérico de mutações otimistas: tira um snapshot do
// estado, aplica a mudança local, persiste e, em falha, restaura o snapshot
// exato pré-mudança (ação compensatória — não existe transação cobrindo os
// dois lados). No máximo uma divergência pendente por operação.
func (s *Store) mutate(ctx context.Context, applyLocal func([]domain.CartItem) []domain.CartItem, persist func(context.Context) error) {
	s.mu.Lock()
	previous := cloneItems(s.items)
	s.items = applyLocal(normalizeItems(cloneItems(s.items)))
	s.saveSnapshot(ctx)
	s.mu.Unlock()

	if err := persist(ctx); err != nil {
		s.log.Warn("Falha de persistência na mutação do carrinho; revertendo estado local.", map[string]interface{}{
			"subject": s.subjectID,
			"error":   err.Error(),
		})

		s.mu.Lock()
		s.items = previous
		s.saveSnapshot(ctx)
		s.mu.Unlock()
	}
}

// saveSnapshot grava o estado local no snapshot, se configurado.
// Chamar apenas com s.mu em posse.
func (s *Store) saveSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Save(ctx, s.subjectID, s.items); err != nil {
		s.log.Debug("Falha ao gravar snapshot local do carrinho.", map[string]interface{}{
			"subject": s.subjectID,
			"error":   err.Error(),
		})
	}
}

// normalizeItems garante que todos os ids existentes estejam na forma string canônica.
func normalizeItems(items []domain.CartItem) []domain.CartItem {
	for i := range items {
		items[i].ID = NormalizeID(items[i].ID)
	}
	return items
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return nil
	}
	cloned := make([]domain.CartItem, len(items))
	copy(cloned, items)
	return cloned
}
