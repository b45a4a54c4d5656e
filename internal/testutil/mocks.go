package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/gestorloja/gestor-backend/internal/domain"
	"github.com/gestorloja/gestor-backend/internal/util"
	"github.com/gestorloja/gestor-backend/internal/websocket"
)

// MockClientRepository is a mock implementation of domain.ClientRepository
type MockClientRepository struct {
	Clients   map[int32]*domain.Client
	NextID    int32
	CreateErr error
	UpdateErr error

	SetLastReminderErr error
	LastReminderMonths map[int32]time.Time
}

// NewMockClientRepository creates a new MockClientRepository
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		Clients:            make(map[int32]*domain.Client),
		LastReminderMonths: make(map[int32]time.Time),
		NextID:             1,
	}
}

// Create creates a new client
func (m *MockClientRepository) Create(client *domain.Client) (*domain.Client, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	client.ID = m.NextID
	m.NextID++
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	m.Clients[client.ID] = client
	return client, nil
}

// GetByID retrieves a client by ID
func (m *MockClientRepository) GetByID(id int32) (*domain.Client, error) {
	client, ok := m.Clients[id]
	if !ok || client.DeletedAt != nil {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

// GetAll retrieves all active clients
func (m *MockClientRepository) GetAll() ([]*domain.Client, error) {
	clients := make([]*domain.Client, 0, len(m.Clients))
	for _, client := range m.Clients {
		if client.DeletedAt == nil {
			clients = append(clients, client)
		}
	}
	return clients, nil
}

// Update updates an existing client
func (m *MockClientRepository) Update(client *domain.Client) (*domain.Client, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	if _, ok := m.Clients[client.ID]; !ok {
		return nil, domain.ErrClientNotFound
	}
	client.UpdatedAt = time.Now()
	m.Clients[client.ID] = client
	return client, nil
}

// SoftDelete marks a client as deleted
func (m *MockClientRepository) SoftDelete(id int32) error {
	client, ok := m.Clients[id]
	if !ok || client.DeletedAt != nil {
		return domain.ErrClientNotFound
	}
	now := time.Now()
	client.DeletedAt = &now
	return nil
}

// SetLastReminderMonth records the month a reminder was last sent
func (m *MockClientRepository) SetLastReminderMonth(id int32, month time.Time) error {
	if m.SetLastReminderErr != nil {
		return m.SetLastReminderErr
	}
	client, ok := m.Clients[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	m.LastReminderMonths[id] = month
	client.LastReminderMonth = &month
	return nil
}

// MockDebtRepository is a mock implementation of domain.DebtRepository
type MockDebtRepository struct {
	Debts       map[int32]*domain.Debt
	NextID      int32
	CreateErr   error
	CreateTxErr error

	// FailOnCreateTx aborts the n-th CreateTx call (1-based) when set.
	FailOnCreateTx int
	txCreates      int
}

// NewMockDebtRepository creates a new MockDebtRepository
func NewMockDebtRepository() *MockDebtRepository {
	return &MockDebtRepository{
		Debts:  make(map[int32]*domain.Debt),
		NextID: 1,
	}
}

// Create creates a new debt
func (m *MockDebtRepository) Create(debt *domain.Debt) (*domain.Debt, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.store(debt), nil
}

// CreateTx creates a new debt inside a transaction
func (m *MockDebtRepository) CreateTx(tx interface{}, debt *domain.Debt) (*domain.Debt, error) {
	m.txCreates++
	if m.CreateTxErr != nil {
		return nil, m.CreateTxErr
	}
	if m.FailOnCreateTx > 0 && m.txCreates == m.FailOnCreateTx {
		return nil, domain.ErrInternalError
	}
	return m.store(debt), nil
}

func (m *MockDebtRepository) store(debt *domain.Debt) *domain.Debt {
	debt.ID = m.NextID
	m.NextID++
	debt.CreatedAt = time.Now()
	debt.UpdatedAt = debt.CreatedAt
	if debt.Status == "" {
		debt.Status = domain.DebtStatusOpen
	}
	m.Debts[debt.ID] = debt
	return debt
}

// GetByID retrieves a debt by ID
func (m *MockDebtRepository) GetByID(id int32) (*domain.Debt, error) {
	debt, ok := m.Debts[id]
	if !ok {
		return nil, domain.ErrDebtNotFound
	}
	return debt, nil
}

// GetByClient retrieves all debts of a client
func (m *MockDebtRepository) GetByClient(clientID int32) ([]*domain.Debt, error) {
	var debts []*domain.Debt
	for _, debt := range m.Debts {
		if debt.ClientID == clientID {
			debts = append(debts, debt)
		}
	}
	return debts, nil
}

// GetByMonth retrieves all debts of an invoice month
func (m *MockDebtRepository) GetByMonth(month time.Time) ([]*domain.Debt, error) {
	month = util.FirstOfMonth(month)
	var debts []*domain.Debt
	for _, debt := range m.Debts {
		if util.FirstOfMonth(debt.InvoiceMonth).Equal(month) {
			debts = append(debts, debt)
		}
	}
	return debts, nil
}

// GetOpenByClient retrieves the unpaid debts of a client
func (m *MockDebtRepository) GetOpenByClient(clientID int32) ([]*domain.Debt, error) {
	var debts []*domain.Debt
	for _, debt := range m.Debts {
		if debt.ClientID == clientID && debt.Status != domain.DebtStatusPaid {
			debts = append(debts, debt)
		}
	}
	return debts, nil
}

// Update updates an existing debt
func (m *MockDebtRepository) Update(debt *domain.Debt) (*domain.Debt, error) {
	if _, ok := m.Debts[debt.ID]; !ok {
		return nil, domain.ErrDebtNotFound
	}
	debt.UpdatedAt = time.Now()
	m.Debts[debt.ID] = debt
	return debt, nil
}

// Delete removes a debt
func (m *MockDebtRepository) Delete(id int32) error {
	if _, ok := m.Debts[id]; !ok {
		return domain.ErrDebtNotFound
	}
	delete(m.Debts, id)
	return nil
}

// SumOpenAmount sums the amount of all unpaid debts
func (m *MockDebtRepository) SumOpenAmount() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, debt := range m.Debts {
		if debt.Status != domain.DebtStatusPaid {
			sum = sum.Add(debt.Amount)
		}
	}
	return sum, nil
}

// SumOpenAmountByClient sums the unpaid debt amount of one client
func (m *MockDebtRepository) SumOpenAmountByClient(clientID int32) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, debt := range m.Debts {
		if debt.ClientID == clientID && debt.Status != domain.DebtStatusPaid {
			sum = sum.Add(debt.Amount)
		}
	}
	return sum, nil
}

// MockSaleRepository is a mock implementation of domain.SaleRepository
type MockSaleRepository struct {
	Sales       map[int32]*domain.Sale
	NextID      int32
	CreateErr   error
	CreateTxErr error
}

// NewMockSaleRepository creates a new MockSaleRepository
func NewMockSaleRepository() *MockSaleRepository {
	return &MockSaleRepository{
		Sales:  make(map[int32]*domain.Sale),
		NextID: 1,
	}
}

// Create creates a new sale
func (m *MockSaleRepository) Create(sale *domain.Sale) (*domain.Sale, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.store(sale), nil
}

// CreateTx creates a new sale inside a transaction
func (m *MockSaleRepository) CreateTx(tx interface{}, sale *domain.Sale) (*domain.Sale, error) {
	if m.CreateTxErr != nil {
		return nil, m.CreateTxErr
	}
	return m.store(sale), nil
}

func (m *MockSaleRepository) store(sale *domain.Sale) *domain.Sale {
	sale.ID = m.NextID
	m.NextID++
	sale.CreatedAt = time.Now()
	sale.UpdatedAt = sale.CreatedAt
	m.Sales[sale.ID] = sale
	return sale
}

// GetByID retrieves a sale by ID
func (m *MockSaleRepository) GetByID(id int32) (*domain.Sale, error) {
	sale, ok := m.Sales[id]
	if !ok {
		return nil, domain.ErrSaleNotFound
	}
	return sale, nil
}

// GetByClient retrieves all sales of a client
func (m *MockSaleRepository) GetByClient(clientID int32) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	for _, sale := range m.Sales {
		if sale.ClientID == clientID {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

// GetByIdempotencyKey retrieves a sale by its idempotency key
func (m *MockSaleRepository) GetByIdempotencyKey(key string) (*domain.Sale, error) {
	for _, sale := range m.Sales {
		if sale.IdempotencyKey != nil && *sale.IdempotencyKey == key {
			return sale, nil
		}
	}
	return nil, domain.ErrSaleNotFound
}

// Delete removes a sale
func (m *MockSaleRepository) Delete(id int32) error {
	if _, ok := m.Sales[id]; !ok {
		return domain.ErrSaleNotFound
	}
	delete(m.Sales, id)
	return nil
}

// SumByMonth sums the sale totals recorded in a calendar month
func (m *MockSaleRepository) SumByMonth(month time.Time) (decimal.Decimal, error) {
	month = util.FirstOfMonth(month)
	sum := decimal.Zero
	for _, sale := range m.Sales {
		if util.FirstOfMonth(sale.CreatedAt).Equal(month) {
			sum = sum.Add(sale.TotalAmount)
		}
	}
	return sum, nil
}

// MockPaymentRepository is a mock implementation of domain.PaymentRepository
type MockPaymentRepository struct {
	Payments  map[int32]*domain.Payment
	NextID    int32
	CreateErr error
}

// NewMockPaymentRepository creates a new MockPaymentRepository
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		Payments: make(map[int32]*domain.Payment),
		NextID:   1,
	}
}

// Create creates a new payment
func (m *MockPaymentRepository) Create(payment *domain.Payment) (*domain.Payment, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	payment.ID = m.NextID
	m.NextID++
	payment.CreatedAt = time.Now()
	m.Payments[payment.ID] = payment
	return payment, nil
}

// GetByID retrieves a payment by ID
func (m *MockPaymentRepository) GetByID(id int32) (*domain.Payment, error) {
	payment, ok := m.Payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// GetByDebt retrieves all payments against a debt
func (m *MockPaymentRepository) GetByDebt(debtID int32) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for _, payment := range m.Payments {
		if payment.DebtID == debtID {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

// SumByDebt sums the payments against a debt
func (m *MockPaymentRepository) SumByDebt(debtID int32) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, payment := range m.Payments {
		if payment.DebtID == debtID {
			sum = sum.Add(payment.Amount)
		}
	}
	return sum, nil
}

// Delete removes a payment
func (m *MockPaymentRepository) Delete(id int32) error {
	if _, ok := m.Payments[id]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(m.Payments, id)
	return nil
}

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	Products    map[int32]*domain.Product
	NextID      int32
	CreateErr   error
	SetImageErr error
}

// NewMockProductRepository creates a new MockProductRepository
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		Products: make(map[int32]*domain.Product),
		NextID:   1,
	}
}

// Create creates a new product
func (m *MockProductRepository) Create(product *domain.Product) (*domain.Product, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	product.ID = m.NextID
	m.NextID++
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	m.Products[product.ID] = product
	return product, nil
}

// GetByID retrieves a product by ID
func (m *MockProductRepository) GetByID(id int32) (*domain.Product, error) {
	product, ok := m.Products[id]
	if !ok || product.DeletedAt != nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// GetAll retrieves all active products
func (m *MockProductRepository) GetAll() ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(m.Products))
	for _, product := range m.Products {
		if product.DeletedAt == nil {
			products = append(products, product)
		}
	}
	return products, nil
}

// Update updates an existing product
func (m *MockProductRepository) Update(product *domain.Product) (*domain.Product, error) {
	if _, ok := m.Products[product.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	product.UpdatedAt = time.Now()
	m.Products[product.ID] = product
	return product, nil
}

// SoftDelete marks a product as deleted
func (m *MockProductRepository) SoftDelete(id int32) error {
	product, ok := m.Products[id]
	if !ok || product.DeletedAt != nil {
		return domain.ErrProductNotFound
	}
	now := time.Now()
	product.DeletedAt = &now
	return nil
}

// SetImageURL points the product at a stored image, or clears it
func (m *MockProductRepository) SetImageURL(id int32, imageURL *string) error {
	if m.SetImageErr != nil {
		return m.SetImageErr
	}
	product, ok := m.Products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.ImageURL = imageURL
	return nil
}

// AdjustQuantityTx applies a signed quantity change inside a transaction
func (m *MockProductRepository) AdjustQuantityTx(tx interface{}, id int32, delta int32) (*domain.Product, error) {
	product, ok := m.Products[id]
	if !ok || product.DeletedAt != nil {
		return nil, domain.ErrProductNotFound
	}
	if product.Quantity+delta < 0 {
		return nil, domain.ErrStockInsufficient
	}
	product.Quantity += delta
	product.UpdatedAt = time.Now()
	return product, nil
}

// CountLowStock counts products at or below their reorder threshold
func (m *MockProductRepository) CountLowStock() (int64, error) {
	var count int64
	for _, product := range m.Products {
		if product.DeletedAt == nil && product.LowStock() {
			count++
		}
	}
	return count, nil
}

// MockStockMovementRepository is a mock implementation of domain.StockMovementRepository
type MockStockMovementRepository struct {
	Movements   map[int32]*domain.StockMovement
	NextID      int32
	CreateTxErr error
}

// NewMockStockMovementRepository creates a new MockStockMovementRepository
func NewMockStockMovementRepository() *MockStockMovementRepository {
	return &MockStockMovementRepository{
		Movements: make(map[int32]*domain.StockMovement),
		NextID:    1,
	}
}

// CreateTx creates a new stock movement inside a transaction
func (m *MockStockMovementRepository) CreateTx(tx interface{}, movement *domain.StockMovement) (*domain.StockMovement, error) {
	if m.CreateTxErr != nil {
		return nil, m.CreateTxErr
	}
	movement.ID = m.NextID
	m.NextID++
	movement.CreatedAt = time.Now()
	m.Movements[movement.ID] = movement
	return movement, nil
}

// GetByProduct retrieves the movement history of a product
func (m *MockStockMovementRepository) GetByProduct(productID int32) ([]*domain.StockMovement, error) {
	var movements []*domain.StockMovement
	for _, movement := range m.Movements {
		if movement.ProductID == productID {
			movements = append(movements, movement)
		}
	}
	return movements, nil
}

// SentMessage records one delivery attempt made through MockSender
type SentMessage struct {
	Number string
	Text   string
}

// MockSender is a mock implementation of messaging.Sender
type MockSender struct {
	mu   sync.Mutex
	Sent []SentMessage
	Err  error
}

// NewMockSender creates a new MockSender
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records the message and returns the configured error
func (m *MockSender) Send(ctx context.Context, number, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMessage{Number: number, Text: text})
	return nil
}

// Messages returns a copy of the recorded deliveries
func (m *MockSender) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []websocket.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Published returns a copy of the recorded events
func (m *MockEventPublisher) Published() []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]websocket.Event, len(m.Events))
	copy(out, m.Events)
	return out
}

// MockTxBeginner hands out no-op transactions for services that batch
// writes. The fake transactions satisfy pgx.Tx but only Commit and Rollback
// do anything; mock repositories ignore the tx they receive.
type MockTxBeginner struct {
	BeginErr  error
	CommitErr error
	Txs       []*MockTx
}

// NewMockTxBeginner creates a new MockTxBeginner
func NewMockTxBeginner() *MockTxBeginner {
	return &MockTxBeginner{}
}

// Begin starts a fake transaction
func (m *MockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	tx := &MockTx{CommitErr: m.CommitErr}
	m.Txs = append(m.Txs, tx)
	return tx, nil
}

// MockTx is a no-op pgx.Tx
type MockTx struct {
	CommitErr  error
	Committed  bool
	RolledBack bool
}

// Begin is not supported on the fake transaction
func (t *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

// Commit marks the transaction committed
func (t *MockTx) Commit(ctx context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

// Rollback marks the transaction rolled back unless it committed first
func (t *MockTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// CopyFrom is not supported on the fake transaction
func (t *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

// SendBatch is not supported on the fake transaction
func (t *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

// LargeObjects is not supported on the fake transaction
func (t *MockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

// Prepare is not supported on the fake transaction
func (t *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

// Exec is not supported on the fake transaction
func (t *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

// Query is not supported on the fake transaction
func (t *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

// QueryRow is not supported on the fake transaction
func (t *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

// Conn is not supported on the fake transaction
func (t *MockTx) Conn() *pgx.Conn { return nil }
