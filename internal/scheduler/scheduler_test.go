package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/fiskora/fiskora/internal/clock"
	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bwmarrin/snowflake"
)

type documentsMock struct {
	mock.Mock
}

func (m *documentsMock) ExpireQuotes(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *documentsMock) Create(context.Context, documentdomain.CreateRequest) (*documentdomain.SalesDocument, error) {
	return nil, nil
}
func (m *documentsMock) Get(context.Context, snowflake.ID, snowflake.ID) (*documentdomain.SalesDocument, error) {
	return nil, nil
}
func (m *documentsMock) List(context.Context, documentdomain.ListRequest) (*documentdomain.ListResponse, error) {
	return nil, nil
}
func (m *documentsMock) UpdateStatus(context.Context, documentdomain.UpdateStatusRequest) (*documentdomain.SalesDocument, error) {
	return nil, nil
}
func (m *documentsMock) Convert(context.Context, snowflake.ID, snowflake.ID) (*documentdomain.SalesDocument, error) {
	return nil, nil
}
func (m *documentsMock) PostInvoice(context.Context, snowflake.ID, snowflake.ID) (*documentdomain.SalesDocument, error) {
	return nil, nil
}
func (m *documentsMock) MarkPaid(context.Context, snowflake.ID, snowflake.ID) (*documentdomain.SalesDocument, error) {
	return nil, nil
}
func (m *documentsMock) RenderPDF(context.Context, snowflake.ID, snowflake.ID) ([]byte, error) {
	return nil, nil
}
func (m *documentsMock) EmailDocument(context.Context, snowflake.ID, snowflake.ID, string) error {
	return nil
}

func TestSweepUsesSchedulerClock(t *testing.T) {
	docs := new(documentsMock)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)

	sched := New(Params{
		Log:         zap.NewNop(),
		DocumentSvc: docs,
		Clock:       fake,
	})

	docs.On("ExpireQuotes", mock.Anything, start).Return(0, nil).Once()
	count, err := sched.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	fake.Advance(48 * time.Hour)
	docs.On("ExpireQuotes", mock.Anything, start.Add(48*time.Hour)).Return(3, nil).Once()
	count, err = sched.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	docs.AssertExpectations(t)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, time.Hour, cfg.SweepInterval)

	cfg = Config{SweepInterval: 5 * time.Minute}.withDefaults()
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}
