package cartsync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"mincommerce/internal/cartsync"
	"mincommerce/internal/domain"
	"mincommerce/internal/pkg/logger"
)

// MockPersistence é uma implementação mock da interface Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Fetch(ctx context.Context) ([]domain.CartItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockPersistence) Add(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockPersistence) SetQuantity(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockPersistence) Remove(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockPersistence) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestStore(persistence cartsync.Persistence) *cartsync.Store {
	return cartsync.NewStore("subject-1", persistence, nil, logger.NewLogger("error"))
}

// TestAddItem_Success_NewEntry testa a adição otimista de um produto novo.
func TestAddItem_Success_NewEntry(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil)

	store.AddItem(context.Background(), cartsync.Product{ID: 1, Name: "Zapatillas Urbanas", Price: 179.99, Stock: 100}, 2)

	items := store.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, store.Count())
	mockPersistence.AssertExpectations(t)
}

// TestAddItem_IDNormalization testa que duas adições do mesmo produto sob
// id "7" e numérico 7 resultam em UMA entrada com a quantidade combinada.
func TestAddItem_IDNormalization(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "7", 1).Return(nil).Twice()

	store.AddItem(context.Background(), cartsync.Product{ID: "7", Name: "Reloj Inteligente", Price: 299.99}, 1)
	store.AddItem(context.Background(), cartsync.Product{ID: 7, Name: "Reloj Inteligente", Price: 299.99}, 1)

	items := store.Items()
	assert.Len(t, items, 1, "id string e numérico devem colapsar na mesma entrada")
	assert.Equal(t, "7", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	mockPersistence.AssertExpectations(t)
}

// TestAddItem_FloatID_Normalization cobre o id como float64 (decodificação JSON).
func TestAddItem_FloatID_Normalization(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "7", 1).Return(nil).Twice()

	store.AddItem(context.Background(), cartsync.Product{ID: float64(7), Name: "Reloj Inteligente"}, 1)
	store.AddItem(context.Background(), cartsync.Product{ID: "7", Name: "Reloj Inteligente"}, 1)

	assert.Len(t, store.Items(), 1)
	assert.Equal(t, 2, store.Count())
	mockPersistence.AssertExpectations(t)
}

// TestAddItem_ZeroQuantity_NoOp testa que AddItem com quantidade 0 não faz nada
// (o invariante proíbe quantidades não positivas).
func TestAddItem_ZeroQuantity_NoOp(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	store.AddItem(context.Background(), cartsync.Product{ID: 1, Name: "Mochila Viajera"}, 0)
	store.AddItem(context.Background(), cartsync.Product{ID: 1, Name: "Mochila Viajera"}, -3)

	assert.Empty(t, store.Items())
	mockPersistence.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

// TestAddItem_Fail_RollsBack testa a ação compensatória: falha de persistência
// restaura o snapshot exato pré-mudança.
func TestAddItem_Fail_RollsBack(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil).Once()
	store.AddItem(context.Background(), cartsync.Product{ID: 1, Name: "Zapatillas Urbanas", Price: 179.99}, 2)

	// Segunda adição falha no servidor
	mockPersistence.On("Add", mock.Anything, "1", 3).Return(errors.New("connection refused")).Once()
	store.AddItem(context.Background(), cartsync.Product{ID: 1, Name: "Zapatillas Urbanas", Price: 179.99}, 3)

	items := store.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity, "a quantidade deve voltar ao valor pré-falha")
	mockPersistence.AssertExpectations(t)
}

// TestRemoveItem_RoundTrip testa que add seguido de remove devolve o carrinho
// ao conjunto anterior de itens.
func TestRemoveItem_RoundTrip(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "2", 1).Return(nil)
	mockPersistence.On("Add", mock.Anything, "5", 2).Return(nil)
	mockPersistence.On("Remove", mock.Anything, "5").Return(nil)

	store.AddItem(context.Background(), cartsync.Product{ID: 2, Name: "Camiseta Deportiva", Price: 49.99}, 1)
	store.AddItem(context.Background(), cartsync.Product{ID: 5, Name: "Mochila Viajera", Price: 89.99}, 2)

	store.RemoveItem(context.Background(), "5")

	items := store.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
	mockPersistence.AssertExpectations(t)
}

// TestRemoveItem_Fail_RollsBack testa o rollback da remoção.
func TestRemoveItem_Fail_RollsBack(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "2", 1).Return(nil)
	mockPersistence.On("Remove", mock.Anything, "2").Return(errors.New("timeout"))

	store.AddItem(context.Background(), cartsync.Product{ID: 2, Name: "Camiseta Deportiva"}, 1)
	store.RemoveItem(context.Background(), "2")

	assert.Len(t, store.Items(), 1, "o item deve reaparecer após a falha remota")
	mockPersistence.AssertExpectations(t)
}

// TestUpdateQuantity_TotalPrice reproduz o cenário da especificação de
// propriedades: dois itens, total 25; zerar o primeiro deixa total 5.
func TestUpdateQuantity_TotalPrice(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil)
	mockPersistence.On("Add", mock.Anything, "2", 1).Return(nil)
	mockPersistence.On("SetQuantity", mock.Anything, "1", 0).Return(nil)

	store.AddItem(context.Background(), cartsync.Product{ID: "1", Price: 10}, 2)
	store.AddItem(context.Background(), cartsync.Product{ID: "2", Price: 5}, 1)
	assert.Equal(t, 25.0, store.TotalPrice())

	// Quantidade 0 significa remoção, nunca zero armazenado
	store.UpdateQuantity(context.Background(), "1", 0)

	items := store.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, 5.0, store.TotalPrice())
	mockPersistence.AssertExpectations(t)
}

// TestUpdateQuantity_Overwrite testa a sobrescrita simples de quantidade.
func TestUpdateQuantity_Overwrite(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil)
	mockPersistence.On("SetQuantity", mock.Anything, "1", 7).Return(nil)

	store.AddItem(context.Background(), cartsync.Product{ID: 1, Price: 10}, 2)
	store.UpdateQuantity(context.Background(), "1", 7)

	items := store.Items()
	assert.Equal(t, 7, items[0].Quantity)
	mockPersistence.AssertExpectations(t)
}

// TestUpdateQuantity_Fail_RollsBack testa o rollback da atualização.
func TestUpdateQuantity_Fail_RollsBack(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil)
	mockPersistence.On("SetQuantity", mock.Anything, "1", 9).Return(errors.New("500"))

	store.AddItem(context.Background(), cartsync.Product{ID: 1, Price: 10}, 2)
	store.UpdateQuantity(context.Background(), "1", 9)

	assert.Equal(t, 2, store.Items()[0].Quantity)
	mockPersistence.AssertExpectations(t)
}

// TestClear_BestEffort testa que a limpeza local é mantida mesmo com falha remota.
func TestClear_BestEffort(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 1).Return(nil)
	mockPersistence.On("Clear", mock.Anything).Return(errors.New("network down"))

	store.AddItem(context.Background(), cartsync.Product{ID: 1, Price: 10}, 1)
	store.Clear(context.Background())

	// Sem rollback: a limpeza local é autoritativa
	assert.Empty(t, store.Items())
	assert.Equal(t, 0, store.Count())
	mockPersistence.AssertExpectations(t)
}

// TestLoadFromPersistent_ReplacesWholesale testa a carga read-through no login.
func TestLoadFromPersistent_ReplacesWholesale(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	persisted := []domain.CartItem{
		{ID: "1", Name: "Zapatillas Urbanas", Price: 179.99, Quantity: 2},
		{ID: "3", Name: "Reloj Inteligente", Price: 299.99, Quantity: 1},
	}
	mockPersistence.On("Fetch", mock.Anything).Return(persisted, nil)

	store.LoadFromPersistent(context.Background())

	items := store.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, 3, store.Count())
	mockPersistence.AssertExpectations(t)
}

// TestLoadFromPersistent_Fail_KeepsLocalState testa que falha na carga deixa
// o estado local no último valor conhecido.
func TestLoadFromPersistent_Fail_KeepsLocalState(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 1).Return(nil)
	store.AddItem(context.Background(), cartsync.Product{ID: 1, Price: 10}, 1)

	mockPersistence.On("Fetch", mock.Anything).Return([]domain.CartItem{}, errors.New("503"))
	store.LoadFromPersistent(context.Background())

	assert.Len(t, store.Items(), 1, "estado local deve sobreviver à falha de carga")
	mockPersistence.AssertExpectations(t)
}

// TestSyncOnLogout_FullReplace testa a substituição total no logout:
// delete-all seguido da reinserção de cada item local.
func TestSyncOnLogout_FullReplace(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil).Once()
	mockPersistence.On("Add", mock.Anything, "2", 1).Return(nil).Once()
	store.AddItem(context.Background(), cartsync.Product{ID: 1, Price: 10}, 2)
	store.AddItem(context.Background(), cartsync.Product{ID: 2, Price: 5}, 1)

	mockPersistence.On("Clear", mock.Anything).Return(nil).Once()
	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil).Once()
	mockPersistence.On("Add", mock.Anything, "2", 1).Return(nil).Once()

	store.SyncOnLogout(context.Background())

	mockPersistence.AssertExpectations(t)
}

// TestSyncOnLogout_ClearFails_SkipsReinsert testa que a reinserção não roda
// se o delete-all falhar (evita duplicar linhas).
func TestSyncOnLogout_ClearFails_SkipsReinsert(t *testing.T) {
	mockPersistence := new(MockPersistence)
	store := newTestStore(mockPersistence)

	mockPersistence.On("Add", mock.Anything, "1", 2).Return(nil).Once()
	store.AddItem(context.Background(), cartsync.Product{ID: 1, Price: 10}, 2)

	mockPersistence.On("Clear", mock.Anything).Return(errors.New("gone")).Once()

	store.SyncOnLogout(context.Background())

	// Add só deve ter sido chamado pela adição inicial, nunca pelo sync
	mockPersistence.AssertNumberOfCalls(t, "Add", 1)
}

// TestNormalizeID cobre as representações heterogêneas de chave de produto.
func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "7", cartsync.NormalizeID("7"))
	assert.Equal(t, "7", cartsync.NormalizeID(7))
	assert.Equal(t, "7", cartsync.NormalizeID(int64(7)))
	assert.Equal(t, "7", cartsync.NormalizeID(float64(7)))
	assert.Equal(t, "7.5", cartsync.NormalizeID(7.5))
}

// MockSnapshot é uma implementação mock da interface Snapshot.
type MockSnapshot struct {
	mock.Mock
}

func (m *MockSnapshot) Save(ctx context.Context, subjectID string, items []domain.CartItem) error {
	args := m.Called(ctx, subjectID, items)
	return args.Error(0)
}

func (m *MockSnapshot) Load(ctx context.Context, subjectID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

// TestLoadFromSnapshot_HydratesLocalState testa a hidratação do carrinho
// local a partir do snapshot gravado, com normalização dos ids.
func TestLoadFromSnapshot_HydratesLocalState(t *testing.T) {
	mockPersistence := new(MockPersistence)
	mockSnapshot := new(MockSnapshot)
	store := cartsync.NewStore("subject-1", mockPersistence, mockSnapshot, logger.NewLogger("error"))

	saved := []domain.CartItem{
		{ID: "3", Name: "Camiseta Deportiva", Price: 49.99, Quantity: 2},
	}
	mockSnapshot.On("Load", mock.Anything, "subject-1").Return(saved, nil).Once()

	store.LoadFromSnapshot(context.Background())

	items := store.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, "3", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	mockSnapshot.AssertExpectations(t)
}

// TestLoadFromSnapshot_Failure_StartsEmpty testa que falha de leitura do
// snapshot deixa o carrinho vazio, sem erro propagado.
func TestLoadFromSnapshot_Failure_StartsEmpty(t *testing.T) {
	mockPersistence := new(MockPersistence)
	mockSnapshot := new(MockSnapshot)
	store := cartsync.NewStore("subject-1", mockPersistence, mockSnapshot, logger.NewLogger("error"))

	mockSnapshot.On("Load", mock.Anything, "subject-1").
		Return([]domain.CartItem(nil), errors.New("storage indisponível")).Once()

	store.LoadFromSnapshot(context.Background())

	assert.Empty(t, store.Items())
	assert.Equal(t, 0, store.Count())
}
