package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// --- In-memory state store ---

type memStateStore struct {
	mu      sync.Mutex
	users   map[int64]domain.Identity
	allowed []int64
	botCfg  domain.BotConfig

	saveUsersCalls int
}

func newMemStateStore() *memStateStore {
	return &memStateStore{users: map[int64]domain.Identity{}}
}

func (m *memStateStore) LoadUsers() (map[int64]domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]domain.Identity, len(m.users))
	for id, ident := range m.users {
		out[id] = ident
	}
	return out, nil
}

func (m *memStateStore) SaveUsers(users map[int64]domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = users
	m.saveUsersCalls++
	return nil
}

func (m *memStateStore) LoadAllowed() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64{}, m.allowed...), nil
}

func (m *memStateStore) SaveAllowed(ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowed = ids
	return nil
}

func (m *memStateStore) LoadBotConfig() (domain.BotConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.botCfg
	if cfg.ReportChats == nil {
		cfg.ReportChats = map[int64]domain.ReportSubscription{}
	}
	return cfg, nil
}

func (m *memStateStore) SaveBotConfig(cfg domain.BotConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.botCfg = cfg
	return nil
}

// --- Capture doubles ---

type captureMirror struct {
	mu    sync.Mutex
	tasks []*domain.MirrorTask
}

func (c *captureMirror) Enqueue(task *domain.MirrorTask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, task)
}

func (c *captureMirror) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

func (c *captureMirror) Stop() {}

func (c *captureMirror) Tasks() []*domain.MirrorTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.MirrorTask{}, c.tasks...)
}

type publishedEvent struct {
	Action domain.RecordAction
	Record domain.Record
}

type captureReport struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (c *captureReport) Publish(ctx context.Context, action domain.RecordAction, record *domain.Record, actor *domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, publishedEvent{Action: action, Record: *record})
}

func (c *captureReport) Subscribe(ctx context.Context, chatID int64, spreadsheetID, sheetName string) error {
	return nil
}

func (c *captureReport) Unsubscribe(ctx context.Context, chatID int64) error { return nil }

func (c *captureReport) Events() []publishedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publishedEvent{}, c.events...)
}

type captureNotifier struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]error
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{sent: map[int64][]string{}, failFor: map[int64]error{}}
}

func (c *captureNotifier) Send(ctx context.Context, chatID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failFor[chatID]; err != nil {
		return err
	}
	c.sent[chatID] = append(c.sent[chatID], text)
	return nil
}

func (c *captureNotifier) NotifyLogChat(ctx context.Context, text string) error {
	return c.Send(ctx, -1, text)
}

func (c *captureNotifier) Sent(chatID int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.sent[chatID]...)
}

// --- Mock RecordRepository ---

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.Record, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordRepository) FindRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) SearchRecords(ctx context.Context, query string, limit int) ([]domain.Record, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) SaveRecord(ctx context.Context, record domain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateRecordField(ctx context.Context, recordID string, field domain.RecordField, value any) error {
	args := m.Called(ctx, recordID, field, value)
	return args.Error(0)
}

func (m *MockRecordRepository) DeleteRecord(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

func (m *MockRecordRepository) SupplierTotals(ctx context.Context, spreadsheetID, sheetName string) (map[string]string, error) {
	args := m.Called(ctx, spreadsheetID, sheetName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockRecordRepository) CountRecords(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// --- Mock PaymentRepository ---

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) AllPaymentIDs(ctx context.Context) (map[int64]bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockPaymentRepository) MonthlySummary(ctx context.Context, displayName string) ([]domain.PaymentMonthSummary, error) {
	args := m.Called(ctx, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentMonthSummary), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) (int64, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) UpdatePaymentFields(ctx context.Context, paymentID int64, amount *string, comment *string) error {
	args := m.Called(ctx, paymentID, amount, comment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeletePayment(ctx context.Context, paymentID int64) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// --- Stub gateway with overridable behavior ---

type stubGateway struct {
	ListSpreadsheetsFn func(ctx context.Context) ([]domain.SpreadsheetHandle, error)
	DescribeFn         func(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error)
	ReadRowsFn         func(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error)
	AppendRowFn        func(ctx context.Context, spreadsheetID, sheetName string, row []string) error
	AppendRowsFn       func(ctx context.Context, spreadsheetID, sheetName string, rows [][]string) error
	InsertRowAtFn      func(ctx context.Context, spreadsheetID, sheetName string, row []string, rowIndex int) error
	UpdateCellFn       func(ctx context.Context, spreadsheetID, sheetName string, rowIndex, colIndex int, value string) error
	UpdateRangeFn      func(ctx context.Context, spreadsheetID, sheetName, a1Range string, rows [][]string) error
	DeleteRowFn        func(ctx context.Context, spreadsheetID, sheetName string, rowIndex int) error
	ClearFn            func(ctx context.Context, spreadsheetID, sheetName string) error
	EnsureHeadersFn    func(ctx context.Context, spreadsheetID, sheetName string) error
	InsertRecordFn     func(ctx context.Context, record *domain.Record) error
	UpdateRecordRowFn  func(ctx context.Context, record *domain.Record, field domain.RecordField, prevDate string) error
	DeleteRecordRowFn  func(ctx context.Context, spreadsheetID, sheetName, recordID string) error
	EnsurePaymentsFn   func(ctx context.Context, spreadsheetID string) error
	AppendPaymentFn    func(ctx context.Context, spreadsheetID string, payment *domain.Payment) error
	AppendPaymentsFn   func(ctx context.Context, spreadsheetID string, role domain.Role, payments []domain.Payment) error
	UpdatePaymentRowFn func(ctx context.Context, spreadsheetID string, payment *domain.Payment) error
	DeletePaymentRowFn func(ctx context.Context, spreadsheetID string, role domain.Role, paymentID int64) error
	ReadPaymentRowsFn  func(ctx context.Context, spreadsheetID string, role domain.Role) ([]domain.Payment, error)
}

func (g *stubGateway) ListSpreadsheets(ctx context.Context) ([]domain.SpreadsheetHandle, error) {
	if g.ListSpreadsheetsFn != nil {
		return g.ListSpreadsheetsFn(ctx)
	}
	return nil, nil
}

func (g *stubGateway) Describe(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error) {
	if g.DescribeFn != nil {
		return g.DescribeFn(ctx, spreadsheetID)
	}
	return &domain.SpreadsheetInfo{ID: spreadsheetID}, nil
}

func (g *stubGateway) ReadRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	if g.ReadRowsFn != nil {
		return g.ReadRowsFn(ctx, spreadsheetID, sheetName)
	}
	return nil, nil
}

func (g *stubGateway) AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error {
	if g.AppendRowFn != nil {
		return g.AppendRowFn(ctx, spreadsheetID, sheetName, row)
	}
	return nil
}

func (g *stubGateway) AppendRows(ctx context.Context, spreadsheetID, sheetName string, rows [][]string) error {
	if g.AppendRowsFn != nil {
		return g.AppendRowsFn(ctx, spreadsheetID, sheetName, rows)
	}
	return nil
}

func (g *stubGateway) InsertRowAt(ctx context.Context, spreadsheetID, sheetName string, row []string, rowIndex int) error {
	if g.InsertRowAtFn != nil {
		return g.InsertRowAtFn(ctx, spreadsheetID, sheetName, row, rowIndex)
	}
	return nil
}

func (g *stubGateway) UpdateCell(ctx context.Context, spreadsheetID, sheetName string, rowIndex, colIndex int, value string) error {
	if g.UpdateCellFn != nil {
		return g.UpdateCellFn(ctx, spreadsheetID, sheetName, rowIndex, colIndex, value)
	}
	return nil
}

func (g *stubGateway) UpdateRange(ctx context.Context, spreadsheetID, sheetName, a1Range string, rows [][]string) error {
	if g.UpdateRangeFn != nil {
		return g.UpdateRangeFn(ctx, spreadsheetID, sheetName, a1Range, rows)
	}
	return nil
}

func (g *stubGateway) DeleteRow(ctx context.Context, spreadsheetID, sheetName string, rowIndex int) error {
	if g.DeleteRowFn != nil {
		return g.DeleteRowFn(ctx, spreadsheetID, sheetName, rowIndex)
	}
	return nil
}

func (g *stubGateway) Clear(ctx context.Context, spreadsheetID, sheetName string) error {
	if g.ClearFn != nil {
		return g.ClearFn(ctx, spreadsheetID, sheetName)
	}
	return nil
}

func (g *stubGateway) EnsureHeaders(ctx context.Context, spreadsheetID, sheetName string) error {
	if g.EnsureHeadersFn != nil {
		return g.EnsureHeadersFn(ctx, spreadsheetID, sheetName)
	}
	return nil
}

func (g *stubGateway) InsertRecordSorted(ctx context.Context, record *domain.Record) error {
	if g.InsertRecordFn != nil {
		return g.InsertRecordFn(ctx, record)
	}
	return nil
}

func (g *stubGateway) UpdateRecordRow(ctx context.Context, record *domain.Record, field domain.RecordField, prevDate string) error {
	if g.UpdateRecordRowFn != nil {
		return g.UpdateRecordRowFn(ctx, record, field, prevDate)
	}
	return nil
}

func (g *stubGateway) DeleteRecordRow(ctx context.Context, spreadsheetID, sheetName, recordID string) error {
	if g.DeleteRecordRowFn != nil {
		return g.DeleteRecordRowFn(ctx, spreadsheetID, sheetName, recordID)
	}
	return nil
}

func (g *stubGateway) EnsurePaymentSheets(ctx context.Context, spreadsheetID string) error {
	if g.EnsurePaymentsFn != nil {
		return g.EnsurePaymentsFn(ctx, spreadsheetID)
	}
	return nil
}

func (g *stubGateway) AppendPaymentRow(ctx context.Context, spreadsheetID string, payment *domain.Payment) error {
	if g.AppendPaymentFn != nil {
		return g.AppendPaymentFn(ctx, spreadsheetID, payment)
	}
	return nil
}

func (g *stubGateway) AppendPaymentRows(ctx context.Context, spreadsheetID string, role domain.Role, payments []domain.Payment) error {
	if g.AppendPaymentsFn != nil {
		return g.AppendPaymentsFn(ctx, spreadsheetID, role, payments)
	}
	return nil
}

func (g *stubGateway) UpdatePaymentRow(ctx context.Context, spreadsheetID string, payment *domain.Payment) error {
	if g.UpdatePaymentRowFn != nil {
		return g.UpdatePaymentRowFn(ctx, spreadsheetID, payment)
	}
	return nil
}

func (g *stubGateway) DeletePaymentRow(ctx context.Context, spreadsheetID string, role domain.Role, paymentID int64) error {
	if g.DeletePaymentRowFn != nil {
		return g.DeletePaymentRowFn(ctx, spreadsheetID, role, paymentID)
	}
	return nil
}

func (g *stubGateway) ReadPaymentRows(ctx context.Context, spreadsheetID string, role domain.Role) ([]domain.Payment, error) {
	if g.ReadPaymentRowsFn != nil {
		return g.ReadPaymentRowsFn(ctx, spreadsheetID, role)
	}
	return nil, nil
}
