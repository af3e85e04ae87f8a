package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	accountrepo "github.com/fiskora/fiskora/internal/account/repository"
	accountservice "github.com/fiskora/fiskora/internal/account/service"
	closingdomain "github.com/fiskora/fiskora/internal/closing/domain"
	closingrepo "github.com/fiskora/fiskora/internal/closing/repository"
	"github.com/fiskora/fiskora/internal/config"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	fiscalyearrepo "github.com/fiskora/fiskora/internal/fiscalyear/repository"
	fiscalyearservice "github.com/fiskora/fiskora/internal/fiscalyear/service"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	journalrepo "github.com/fiskora/fiskora/internal/journal/repository"
	journalservice "github.com/fiskora/fiskora/internal/journal/service"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
	seriesrepo "github.com/fiskora/fiskora/internal/series/repository"
	seriesservice "github.com/fiskora/fiskora/internal/series/service"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	svc        closingdomain.Service
	journal    journaldomain.Service
	fiscalYear fiscalyeardomain.Service
	accounts   accountdomain.Service
	series     seriesdomain.Service
	companyID  snowflake.ID
	yearID     snowflake.ID
	cash       snowflake.ID
	revenue    snowflake.ID
	expense    snowflake.ID
	retained   snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accountdomain.Account{},
		&seriesdomain.Series{},
		&fiscalyeardomain.FiscalYear{},
		&fiscalyeardomain.Period{},
		&journaldomain.JournalEntry{},
		&journaldomain.JournalLine{},
		&closingdomain.ClosingRun{},
		&closingdomain.ClosingStep{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	ctx := context.Background()
	companyID := node.Generate()

	accounts := accountservice.NewService(accountservice.Params{
		DB: db, Log: log, GenID: node, Repo: accountrepo.NewRepository(db),
	})
	fiscalYear := fiscalyearservice.NewService(fiscalyearservice.Params{
		DB: db, Log: log, GenID: node, Repo: fiscalyearrepo.NewRepository(db),
	})
	series := seriesservice.NewService(seriesservice.Params{
		DB: db, Log: log, GenID: node, Repo: seriesrepo.NewRepository(db),
	})
	journal := journalservice.NewService(journalservice.Params{
		DB: db, Log: log, GenID: node,
		Repo:       journalrepo.NewRepository(db),
		Accounts:   accountrepo.NewRepository(db),
		FiscalYear: fiscalYear,
		Series:     series,
	})
	svc := NewService(Params{
		DB: db, Log: log, GenID: node, Cfg: config.Config{},
		Repo:       closingrepo.NewRepository(db),
		FiscalYear: fiscalYear,
		Journal:    journal,
		Series:     series,
		Accounts:   accounts,
	})

	mkAccount := func(code, name string, typ accountdomain.AccountType) snowflake.ID {
		account, err := accounts.Create(ctx, accountdomain.CreateRequest{
			CompanyID: companyID, Code: code, Name: name, Type: typ,
		})
		require.NoError(t, err)
		return account.ID
	}

	year, err := fiscalYear.CreateYear(ctx, fiscalyeardomain.CreateYearRequest{
		CompanyID: companyID,
		Name:      "FY2025",
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = series.Create(ctx, seriesdomain.CreateRequest{
		CompanyID: companyID, DocType: "journal", Prefix: "JRN",
	})
	require.NoError(t, err)

	return &fixture{
		db: db, svc: svc, journal: journal, fiscalYear: fiscalYear,
		accounts: accounts, series: series,
		companyID: companyID, yearID: year.ID,
		cash:     mkAccount("5700", "Cash", accountdomain.TypeAsset),
		revenue:  mkAccount("7000", "Sales revenue", accountdomain.TypeIncome),
		expense:  mkAccount("6000", "Purchases", accountdomain.TypeExpense),
		retained: mkAccount("1290", "Retained earnings", accountdomain.TypeEquity),
	}
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// postEntry books and posts a simple two-line entry in March 2025.
func (f *fixture) postEntry(t *testing.T, debitAcc, creditAcc snowflake.ID, amount string) {
	t.Helper()
	entry, err := f.journal.Create(context.Background(), journaldomain.CreateRequest{
		CompanyID: f.companyID,
		EntryDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []journaldomain.LineInput{
			{AccountID: debitAcc, Debit: amt(amount)},
			{AccountID: creditAcc, Credit: amt(amount)},
		},
	})
	require.NoError(t, err)
	_, err = f.journal.Post(context.Background(), f.companyID, entry.ID)
	require.NoError(t, err)
}

func TestStartRunOncePerYear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	run, err := f.svc.StartRun(ctx, f.companyID, f.yearID)
	require.NoError(t, err)
	assert.Equal(t, closingdomain.RunStatusRunning, run.Status)
	assert.Equal(t, 0, run.Cursor)
	require.Len(t, run.Steps, 5)
	assert.Equal(t, closingdomain.StepVerifyJournals, run.Steps[0].Code)
	assert.Equal(t, closingdomain.StepCloseYear, run.Steps[4].Code)

	_, err = f.svc.StartRun(ctx, f.companyID, f.yearID)
	assert.ErrorIs(t, err, closingdomain.ErrRunActive)

	year, err := f.fiscalYear.GetYear(ctx, f.companyID, f.yearID)
	require.NoError(t, err)
	assert.Equal(t, fiscalyeardomain.YearStatusClosing, year.Status)
}

func TestExecuteStepOutOfOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	run, err := f.svc.StartRun(ctx, f.companyID, f.yearID)
	require.NoError(t, err)

	_, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepClosePeriods)
	assert.ErrorIs(t, err, closingdomain.ErrStepOutOfOrder)

	_, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, "no_such_step")
	assert.ErrorIs(t, err, closingdomain.ErrStepNotFound)
}

func TestExecuteStepInProgressRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	run, err := f.svc.StartRun(ctx, f.companyID, f.yearID)
	require.NoError(t, err)

	// Another executor is on the cursor step right now.
	started := time.Now().UTC()
	require.NoError(t, f.db.Model(&closingdomain.ClosingStep{}).
		Where("run_id = ? AND seq = ?", run.ID, 0).
		Updates(map[string]any{
			"status":     closingdomain.StepStatusInProgress,
			"started_at": started,
		}).Error)

	_, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepVerifyJournals)
	assert.ErrorIs(t, err, closingdomain.ErrStepInProgress)

	_, err = f.svc.SkipStep(ctx, f.companyID, run.ID, closingdomain.StepVerifyJournals)
	assert.ErrorIs(t, err, closingdomain.ErrStepInProgress)

	// One left behind by a crashed executor may be retried.
	require.NoError(t, f.db.Model(&closingdomain.ClosingStep{}).
		Where("run_id = ? AND seq = ?", run.ID, 0).
		Update("started_at", started.Add(-time.Minute)).Error)

	loaded, err := f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepVerifyJournals)
	require.NoError(t, err)
	assert.Equal(t, closingdomain.StepStatusCompleted, loaded.Steps[0].Status)
	assert.Equal(t, 1, loaded.Cursor)
}

func TestVerifyJournalsFailsThenRetries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.postEntry(t, f.cash, f.revenue, "100.00")
	draft, err := f.journal.Create(ctx, journaldomain.CreateRequest{
		CompanyID: f.companyID,
		EntryDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Lines: []journaldomain.LineInput{
			{AccountID: f.cash, Debit: amt("5.00")},
			{AccountID: f.revenue, Credit: amt("5.00")},
		},
	})
	require.NoError(t, err)

	run, err := f.svc.StartRun(ctx, f.companyID, f.yearID)
	require.NoError(t, err)

	_, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepVerifyJournals)
	assert.ErrorIs(t, err, journaldomain.ErrUnpostedInRange)

	loaded, err := f.svc.GetRun(ctx, f.companyID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, closingdomain.StepStatusError, loaded.Steps[0].Status)
	assert.NotEmpty(t, loaded.Steps[0].Error)
	assert.Equal(t, 0, loaded.Cursor, "failed step keeps the cursor")

	_, err = f.journal.Post(ctx, f.companyID, draft.ID)
	require.NoError(t, err)

	loaded, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepVerifyJournals)
	require.NoError(t, err)
	assert.Equal(t, closingdomain.StepStatusCompleted, loaded.Steps[0].Status)
	assert.Equal(t, 1, loaded.Cursor)
}

func TestSkipRequiredStepRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	run, err := f.svc.StartRun(ctx, f.companyID, f.yearID)
	require.NoError(t, err)

	_, err = f.svc.SkipStep(ctx, f.companyID, run.ID, closingdomain.StepVerifyJournals)
	assert.ErrorIs(t, err, closingdomain.ErrStepRequired)

	loaded, err := f.svc.GetRun(ctx, f.companyID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, closingdomain.StepStatusPending, loaded.Steps[0].Status)
	assert.Equal(t, 0, loaded.Cursor)
}

func TestFullClosingRun(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// 300 revenue against 120 of expenses: a 180 profit.
	f.postEntry(t, f.cash, f.revenue, "300.00")
	f.postEntry(t, f.expense, f.cash, "120.00")

	run, err := f.svc.StartRun(ctx, f.companyID, f.yearID)
	require.NoError(t, err)

	run, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepVerifyJournals)
	require.NoError(t, err)
	run, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepClosePeriods)
	require.NoError(t, err)

	year, err := f.fiscalYear.GetYear(ctx, f.companyID, f.yearID)
	require.NoError(t, err)
	for _, period := range year.Periods {
		assert.Equal(t, fiscalyeardomain.PeriodStatusClosed, period.Status)
	}

	run, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepPostResultEntry)
	require.NoError(t, err)

	// P&L accounts are zeroed; retained earnings carries the profit.
	balances, err := f.accounts.BalancesTx(ctx, nil, f.companyID,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	byCode := map[string]decimal.Decimal{}
	for _, balance := range balances {
		byCode[balance.Code] = balance.Net
	}
	assert.True(t, byCode["7000"].IsZero(), "revenue closed, got %s", byCode["7000"])
	assert.True(t, byCode["6000"].IsZero(), "expense closed, got %s", byCode["6000"])
	assert.Equal(t, "-180.00", byCode["1290"].StringFixed(2), "profit credited to equity")

	run, err = f.svc.SkipStep(ctx, f.companyID, run.ID, closingdomain.StepRolloverSeries)
	require.NoError(t, err)
	assert.Equal(t, closingdomain.StepStatusSkipped, run.Steps[3].Status)

	run, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepCloseYear)
	require.NoError(t, err)
	assert.Equal(t, closingdomain.RunStatusCompleted, run.Status)
	require.NotNil(t, run.CompletedAt)

	year, err = f.fiscalYear.GetYear(ctx, f.companyID, f.yearID)
	require.NoError(t, err)
	assert.Equal(t, fiscalyeardomain.YearStatusClosed, year.Status)

	err = f.fiscalYear.IsPostingAllowed(ctx, f.companyID, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, fiscalyeardomain.ErrYearClosed)

	_, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, closingdomain.StepCloseYear)
	assert.ErrorIs(t, err, closingdomain.ErrRunNotRunning)
}

func TestRolloverSeriesResetsCounters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.postEntry(t, f.cash, f.revenue, "10.00")

	run, err := f.svc.StartRun(ctx, f.companyID, f.yearID)
	require.NoError(t, err)
	for _, code := range []string{
		closingdomain.StepVerifyJournals,
		closingdomain.StepClosePeriods,
		closingdomain.StepPostResultEntry,
		closingdomain.StepRolloverSeries,
	} {
		run, err = f.svc.ExecuteStep(ctx, f.companyID, run.ID, code)
		require.NoErrorf(t, err, "step %s", code)
	}

	items, err := f.series.List(ctx, f.companyID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].NextNumber)
	_ = run
}
