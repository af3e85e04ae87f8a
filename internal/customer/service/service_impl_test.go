package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) Create(ctx context.Context, customer *customerdomain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *repoMock) FindByID(ctx context.Context, companyID, id snowflake.ID) (*customerdomain.Customer, error) {
	args := m.Called(ctx, companyID, id)
	if customer := args.Get(0); customer != nil {
		return customer.(*customerdomain.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *repoMock) List(ctx context.Context, companyID snowflake.ID) ([]customerdomain.Customer, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]customerdomain.Customer), args.Error(1)
}

func (m *repoMock) Update(ctx context.Context, customer *customerdomain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *repoMock) Receivables(ctx context.Context, companyID, customerID snowflake.ID, asOf time.Time) (customerdomain.Receivables, error) {
	args := m.Called(ctx, companyID, customerID, asOf)
	return args.Get(0).(customerdomain.Receivables), args.Error(1)
}

func newTestService(t *testing.T, repo customerdomain.Repository) customerdomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), GenID: node, Repo: repo})
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreditCheckWithinLimit(t *testing.T) {
	repo := new(repoMock)
	svc := newTestService(t, repo)
	node, _ := snowflake.NewNode(2)
	companyID, customerID := node.Generate(), node.Generate()

	repo.On("FindByID", mock.Anything, companyID, customerID).Return(&customerdomain.Customer{
		ID: customerID, CompanyID: companyID, Name: "Acme", CreditLimit: money("1000.00"), IsActive: true,
	}, nil)
	repo.On("Receivables", mock.Anything, companyID, customerID, mock.Anything).Return(customerdomain.Receivables{
		Outstanding: money("400.00"), Overdue: decimal.Zero,
	}, nil)

	standing, err := svc.CreditCheck(context.Background(), companyID, customerID, money("600.00"))
	require.NoError(t, err)
	assert.True(t, standing.Allowed)

	standing, err = svc.CreditCheck(context.Background(), companyID, customerID, money("600.01"))
	require.NoError(t, err)
	assert.False(t, standing.Allowed)
	assert.ErrorIs(t, svc.AssertCredit(context.Background(), companyID, customerID, money("600.01")), customerdomain.ErrCreditLimitExceeded)
}

func TestCreditCheckOverdueBlocks(t *testing.T) {
	repo := new(repoMock)
	svc := newTestService(t, repo)
	node, _ := snowflake.NewNode(2)
	companyID, customerID := node.Generate(), node.Generate()

	repo.On("FindByID", mock.Anything, companyID, customerID).Return(&customerdomain.Customer{
		ID: customerID, CompanyID: companyID, Name: "Acme", CreditLimit: money("1000.00"), IsActive: true,
	}, nil)
	repo.On("Receivables", mock.Anything, companyID, customerID, mock.Anything).Return(customerdomain.Receivables{
		Outstanding: money("10.00"), Overdue: money("10.00"),
	}, nil)

	standing, err := svc.CreditCheck(context.Background(), companyID, customerID, money("1.00"))
	require.NoError(t, err)
	assert.False(t, standing.Allowed, "any overdue amount blocks new exposure")
}

func TestCreditCheckZeroLimitUnlimited(t *testing.T) {
	repo := new(repoMock)
	svc := newTestService(t, repo)
	node, _ := snowflake.NewNode(2)
	companyID, customerID := node.Generate(), node.Generate()

	repo.On("FindByID", mock.Anything, companyID, customerID).Return(&customerdomain.Customer{
		ID: customerID, CompanyID: companyID, Name: "Acme", CreditLimit: decimal.Zero, IsActive: true,
	}, nil)
	repo.On("Receivables", mock.Anything, companyID, customerID, mock.Anything).Return(customerdomain.Receivables{
		Outstanding: money("999999.00"), Overdue: decimal.Zero,
	}, nil)

	standing, err := svc.CreditCheck(context.Background(), companyID, customerID, money("500000.00"))
	require.NoError(t, err)
	assert.True(t, standing.Allowed)
}

func TestCreditCheckCachesReceivables(t *testing.T) {
	repo := new(repoMock)
	svc := newTestService(t, repo)
	node, _ := snowflake.NewNode(2)
	companyID, customerID := node.Generate(), node.Generate()

	repo.On("FindByID", mock.Anything, companyID, customerID).Return(&customerdomain.Customer{
		ID: customerID, CompanyID: companyID, Name: "Acme", CreditLimit: money("100.00"), IsActive: true,
	}, nil)
	repo.On("Receivables", mock.Anything, companyID, customerID, mock.Anything).Return(customerdomain.Receivables{
		Outstanding: money("50.00"), Overdue: decimal.Zero,
	}, nil).Once()

	for i := 0; i < 3; i++ {
		_, err := svc.CreditCheck(context.Background(), companyID, customerID, money("10.00"))
		require.NoError(t, err)
	}
	repo.AssertNumberOfCalls(t, "Receivables", 1)

	svc.InvalidateCredit(companyID, customerID)
	repo.On("Receivables", mock.Anything, companyID, customerID, mock.Anything).Return(customerdomain.Receivables{
		Outstanding: money("90.00"), Overdue: decimal.Zero,
	}, nil).Once()

	standing, err := svc.CreditCheck(context.Background(), companyID, customerID, money("20.00"))
	require.NoError(t, err)
	assert.False(t, standing.Allowed)
	repo.AssertNumberOfCalls(t, "Receivables", 2)
}
