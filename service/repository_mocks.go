package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"yieldvault/events"
	"yieldvault/models"
)

// MockInvestmentRepository is a mock implementation of InvestmentRepository
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *models.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id int64) (*models.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListActiveUnmatured(ctx context.Context, now time.Time, limit int) ([]*models.Investment, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListMaturedActiveIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockInvestmentRepository) ApplyAccrual(ctx context.Context, id int64, delta decimal.Decimal, observedLastAccrualAt, newLastAccrualAt time.Time) (bool, error) {
	args := m.Called(ctx, id, delta, observedLastAccrualAt, newLastAccrualAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvestmentRepository) SetAccruedProfit(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockInvestmentRepository) Claim(ctx context.Context, id int64, now time.Time) (*models.Investment, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListCompletedFutureIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockInvestmentRepository) ReopenCompleted(ctx context.Context, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.WalletLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByReference(ctx context.Context, reference string) (*models.WalletLedgerEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletLedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*models.WalletLedgerEntry, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WalletLedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) UpdateStatus(ctx context.Context, id int64, status models.LedgerEntryStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) SumCompletedDeposits(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreditBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DebitBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) SetVipTier(ctx context.Context, id int64, tier int) error {
	args := m.Called(ctx, id, tier)
	return args.Error(0)
}

func (m *MockUserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockProcessorRunRepository is a mock implementation of ProcessorRunRepository
type MockProcessorRunRepository struct {
	mock.Mock
}

func (m *MockProcessorRunRepository) Record(ctx context.Context, run *models.ProcessorRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockProcessorRunRepository) GetLatest(ctx context.Context, kind models.RunKind) (*models.ProcessorRun, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProcessorRun), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettingsRepository) Set(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	investmentRepo   InvestmentRepository
	ledgerRepo       LedgerRepository
	userRepo         UserRepository
	processorRunRepo ProcessorRunRepository
	settingsRepo     SettingsRepository
	eventPublisher   EventPublisher
}

// SetRepositories wires the repositories returned by the unit of work getters
func (m *MockUnitOfWork) SetRepositories(
	investmentRepo InvestmentRepository,
	ledgerRepo LedgerRepository,
	userRepo UserRepository,
	processorRunRepo ProcessorRunRepository,
	settingsRepo SettingsRepository,
	eventPublisher EventPublisher,
) {
	m.investmentRepo = investmentRepo
	m.ledgerRepo = ledgerRepo
	m.userRepo = userRepo
	m.processorRunRepo = processorRunRepo
	m.settingsRepo = settingsRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) InvestmentRepository() InvestmentRepository {
	return m.investmentRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) ProcessorRunRepository() ProcessorRunRepository {
	return m.processorRunRepo
}

func (m *MockUnitOfWork) SettingsRepository() SettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
