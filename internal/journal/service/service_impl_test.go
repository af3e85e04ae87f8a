package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	accountrepo "github.com/fiskora/fiskora/internal/account/repository"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	fiscalyearrepo "github.com/fiskora/fiskora/internal/fiscalyear/repository"
	fiscalyearservice "github.com/fiskora/fiskora/internal/fiscalyear/service"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	journalrepo "github.com/fiskora/fiskora/internal/journal/repository"
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
	svc        journaldomain.Service
	fiscalYear fiscalyeardomain.Service
	companyID  snowflake.ID
	cash       snowflake.ID
	revenue    snowflake.ID
	inactive   snowflake.ID
	year       *fiscalyeardomain.YearResponse
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
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	ctx := context.Background()
	companyID := node.Generate()

	accounts := accountrepo.NewRepository(db)
	fiscalYear := fiscalyearservice.NewService(fiscalyearservice.Params{
		DB: db, Log: log, GenID: node, Repo: fiscalyearrepo.NewRepository(db),
	})
	series := seriesservice.NewService(seriesservice.Params{
		DB: db, Log: log, GenID: node, Repo: seriesrepo.NewRepository(db),
	})
	svc := NewService(Params{
		DB: db, Log: log, GenID: node,
		Repo:       journalrepo.NewRepository(db),
		Accounts:   accounts,
		FiscalYear: fiscalYear,
		Series:     series,
	})

	mkAccount := func(code string, typ accountdomain.AccountType, active bool) snowflake.ID {
		account := &accountdomain.Account{
			ID: node.Generate(), CompanyID: companyID,
			Code: code, Name: "acct " + code, Type: typ, IsActive: active,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		require.NoError(t, accounts.Create(ctx, account))
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
		db:         db,
		svc:        svc,
		fiscalYear: fiscalYear,
		companyID:  companyID,
		cash:       mkAccount("5700", accountdomain.TypeAsset, true),
		revenue:    mkAccount("7000", accountdomain.TypeIncome, true),
		inactive:   mkAccount("9999", accountdomain.TypeExpense, false),
		year:       year,
	}
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) draft(t *testing.T, debit, credit string) *journaldomain.JournalEntry {
	t.Helper()
	entry, err := f.svc.Create(context.Background(), journaldomain.CreateRequest{
		CompanyID: f.companyID,
		EntryDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Memo:      "test booking",
		Lines: []journaldomain.LineInput{
			{AccountID: f.cash, Debit: amount(debit)},
			{AccountID: f.revenue, Credit: amount(credit)},
		},
	})
	require.NoError(t, err)
	return entry
}

func TestPostBalancedEntry(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := f.draft(t, "100.00", "100.00")
	assert.Equal(t, journaldomain.StatusDraft, entry.Status)
	assert.Nil(t, entry.Number)

	posted, err := f.svc.Post(ctx, f.companyID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, journaldomain.StatusPosted, posted.Status)
	require.NotNil(t, posted.Number)
	assert.Equal(t, "JRN-000001", *posted.Number)
	require.NotNil(t, posted.PostedAt)

	_, err = f.svc.Post(ctx, f.companyID, entry.ID)
	assert.ErrorIs(t, err, journaldomain.ErrEntryPosted)
}

func TestPostAssignsSequentialNumbers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.Post(ctx, f.companyID, f.draft(t, "10.00", "10.00").ID)
	require.NoError(t, err)
	second, err := f.svc.Post(ctx, f.companyID, f.draft(t, "20.00", "20.00").ID)
	require.NoError(t, err)

	assert.Equal(t, "JRN-000001", *first.Number)
	assert.Equal(t, "JRN-000002", *second.Number)
}

func TestPostUnbalancedEntry(t *testing.T) {
	f := setup(t)

	entry := f.draft(t, "100.00", "99.00")
	_, err := f.svc.Post(context.Background(), f.companyID, entry.ID)
	assert.ErrorIs(t, err, journaldomain.ErrUnbalanced)

	reloaded, err := f.svc.Get(context.Background(), f.companyID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, journaldomain.StatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.Number)
}

func TestPostToleratesRoundingDrift(t *testing.T) {
	f := setup(t)

	entry, err := f.svc.Create(context.Background(), journaldomain.CreateRequest{
		CompanyID: f.companyID,
		EntryDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []journaldomain.LineInput{
			{AccountID: f.cash, Debit: amount("100.005")},
			{AccountID: f.revenue, Credit: amount("100.00")},
		},
	})
	require.NoError(t, err)

	_, err = f.svc.Post(context.Background(), f.companyID, entry.ID)
	assert.NoError(t, err)
}

func TestCreateRejectsInvalidLines(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(ctx, journaldomain.CreateRequest{
		CompanyID: f.companyID, EntryDate: date,
		Lines: []journaldomain.LineInput{{AccountID: f.cash, Debit: amount("5")}},
	})
	assert.ErrorIs(t, err, journaldomain.ErrTooFewLines)

	_, err = f.svc.Create(ctx, journaldomain.CreateRequest{
		CompanyID: f.companyID, EntryDate: date,
		Lines: []journaldomain.LineInput{
			{AccountID: f.cash, Debit: amount("-5")},
			{AccountID: f.revenue, Credit: amount("-5")},
		},
	})
	assert.ErrorIs(t, err, journaldomain.ErrNegativeAmount)

	_, err = f.svc.Create(ctx, journaldomain.CreateRequest{
		CompanyID: f.companyID, EntryDate: date,
		Lines: []journaldomain.LineInput{
			{AccountID: f.cash, Debit: amount("5"), Credit: amount("5")},
			{AccountID: f.revenue, Credit: amount("5")},
		},
	})
	assert.ErrorIs(t, err, journaldomain.ErrBothSidesSet)

	_, err = f.svc.Create(ctx, journaldomain.CreateRequest{
		CompanyID: f.companyID, EntryDate: date,
		Lines: []journaldomain.LineInput{
			{AccountID: f.cash},
			{AccountID: f.revenue, Credit: amount("5")},
		},
	})
	assert.ErrorIs(t, err, journaldomain.ErrEmptyLine)
}

func TestAccountChecksRunInCallerTransaction(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	// An account created earlier in the same transaction must be visible
	// to posting validation.
	err = f.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		account := &accountdomain.Account{
			ID: node.Generate(), CompanyID: f.companyID,
			Code: "7100", Name: "Other revenue", Type: accountdomain.TypeIncome,
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.Create(account).Error; err != nil {
			return err
		}

		_, err := f.svc.CreateAndPostTx(ctx, tx, journaldomain.CreateRequest{
			CompanyID: f.companyID,
			EntryDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			Lines: []journaldomain.LineInput{
				{AccountID: f.cash, Debit: amount("9.00")},
				{AccountID: account.ID, Credit: amount("9.00")},
			},
		})
		return err
	})
	require.NoError(t, err)
}

func TestCreateRejectsInactiveAccount(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), journaldomain.CreateRequest{
		CompanyID: f.companyID,
		EntryDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []journaldomain.LineInput{
			{AccountID: f.inactive, Debit: amount("5")},
			{AccountID: f.revenue, Credit: amount("5")},
		},
	})
	assert.ErrorIs(t, err, accountdomain.ErrInactive)
}

func TestPostIntoClosedPeriod(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	entry := f.draft(t, "50.00", "50.00")

	var march *fiscalyeardomain.Period
	for i := range f.year.Periods {
		if f.year.Periods[i].Name == "2025-03" {
			march = &f.year.Periods[i]
		}
	}
	require.NotNil(t, march)
	_, err := f.fiscalYear.ClosePeriod(ctx, f.companyID, march.ID)
	require.NoError(t, err)

	_, err = f.svc.Post(ctx, f.companyID, entry.ID)
	assert.ErrorIs(t, err, fiscalyeardomain.ErrPeriodClosed)
}

func TestPostOutsideAnyPeriod(t *testing.T) {
	f := setup(t)

	entry, err := f.svc.Create(context.Background(), journaldomain.CreateRequest{
		CompanyID: f.companyID,
		EntryDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Lines: []journaldomain.LineInput{
			{AccountID: f.cash, Debit: amount("5")},
			{AccountID: f.revenue, Credit: amount("5")},
		},
	})
	require.NoError(t, err)

	_, err = f.svc.Post(context.Background(), f.companyID, entry.ID)
	assert.ErrorIs(t, err, fiscalyeardomain.ErrNoPeriodForDate)
}

func TestVerifyRange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	entry := f.draft(t, "10.00", "10.00")
	err := f.svc.VerifyRangeTx(ctx, nil, f.companyID, from, to)
	assert.ErrorIs(t, err, journaldomain.ErrUnpostedInRange)

	_, err = f.svc.Post(ctx, f.companyID, entry.ID)
	require.NoError(t, err)
	assert.NoError(t, f.svc.VerifyRangeTx(ctx, nil, f.companyID, from, to))
}
