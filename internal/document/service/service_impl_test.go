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
	companydomain "github.com/fiskora/fiskora/internal/company/domain"
	companyrepo "github.com/fiskora/fiskora/internal/company/repository"
	companyservice "github.com/fiskora/fiskora/internal/company/service"
	"github.com/fiskora/fiskora/internal/config"
	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
	customerrepo "github.com/fiskora/fiskora/internal/customer/repository"
	customerservice "github.com/fiskora/fiskora/internal/customer/service"
	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	documentrepo "github.com/fiskora/fiskora/internal/document/repository"
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
	svc        documentdomain.Service
	journal    journaldomain.Service
	customers  customerdomain.Service
	companyID  snowflake.ID
	customerID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&companydomain.Company{},
		&customerdomain.Customer{},
		&accountdomain.Account{},
		&seriesdomain.Series{},
		&fiscalyeardomain.FiscalYear{},
		&fiscalyeardomain.Period{},
		&journaldomain.JournalEntry{},
		&journaldomain.JournalLine{},
		&documentdomain.SalesDocument{},
		&documentdomain.DocumentLine{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	ctx := context.Background()

	companies := companyservice.NewService(companyservice.Params{
		DB: db, Log: log, GenID: node, Repo: companyrepo.NewRepository(db),
	})
	customers := customerservice.NewService(customerservice.Params{
		DB: db, Log: log, GenID: node, Repo: customerrepo.NewRepository(db),
	})
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
		DB: db, Log: log, GenID: node,
		Cfg:       config.Config{QuoteValidityDays: 30},
		Repo:      documentrepo.NewRepository(db),
		Customers: customers,
		Accounts:  accounts,
		Series:    series,
		Journal:   journal,
		Companies: companies,
	})

	company, err := companies.Create(ctx, companydomain.CreateRequest{Name: "Fiskora Test SL", Currency: "EUR"})
	require.NoError(t, err)

	customer, err := customers.Create(ctx, customerdomain.CreateRequest{
		CompanyID: company.ID, Name: "Acme", Email: "billing@acme.test",
	})
	require.NoError(t, err)

	for _, spec := range []struct {
		code string
		name string
		typ  accountdomain.AccountType
	}{
		{"4300", "Trade receivables", accountdomain.TypeAsset},
		{"4770", "Output VAT payable", accountdomain.TypeLiability},
		{"7000", "Sales revenue", accountdomain.TypeIncome},
	} {
		_, err := accounts.Create(ctx, accountdomain.CreateRequest{
			CompanyID: company.ID, Code: spec.code, Name: spec.name, Type: spec.typ,
		})
		require.NoError(t, err)
	}

	year := time.Now().UTC().Year()
	_, err = fiscalYear.CreateYear(ctx, fiscalyeardomain.CreateYearRequest{
		CompanyID: company.ID,
		Name:      fmt.Sprintf("FY%d", year),
		StartDate: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	for docType, prefix := range map[string]string{
		"journal": "JRN", "quote": "QUO", "order": "ORD",
		"delivery": "DLV", "invoice": "INV", "credit_note": "CRN",
	} {
		_, err := series.Create(ctx, seriesdomain.CreateRequest{
			CompanyID: company.ID, DocType: docType, Prefix: prefix,
		})
		require.NoError(t, err)
	}

	return &fixture{
		db: db, svc: svc, journal: journal, customers: customers,
		companyID: company.ID, customerID: customer.ID,
	}
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) newQuote(t *testing.T) *documentdomain.SalesDocument {
	t.Helper()
	quote, err := f.svc.Create(context.Background(), documentdomain.CreateRequest{
		CompanyID:  f.companyID,
		CustomerID: f.customerID,
		Type:       documentdomain.TypeQuote,
		Lines: []documentdomain.LineInput{
			{Description: "widget", Quantity: qty("2"), UnitPrice: qty("10"), TaxRate: qty("21")},
			{Description: "gadget", Quantity: qty("1"), UnitPrice: qty("5"), DiscountPct: qty("10"), TaxRate: qty("10")},
			{Description: "sundry", Quantity: qty("3"), UnitPrice: qty("2")},
		},
	})
	require.NoError(t, err)
	return quote
}

func (f *fixture) setStatus(t *testing.T, id snowflake.ID, status documentdomain.Status) *documentdomain.SalesDocument {
	t.Helper()
	doc, err := f.svc.UpdateStatus(context.Background(), documentdomain.UpdateStatusRequest{
		CompanyID: f.companyID, DocumentID: id, Status: status,
	})
	require.NoError(t, err)
	return doc
}

func TestCreateQuoteComputesTotals(t *testing.T) {
	f := setup(t)

	quote := f.newQuote(t)
	assert.Equal(t, documentdomain.TypeQuote, quote.Type)
	assert.Equal(t, documentdomain.StatusDraft, quote.Status)
	assert.Equal(t, "QUO-000001", quote.Number)
	assert.Equal(t, "30.50", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "4.65", quote.TaxTotal.StringFixed(2))
	assert.Equal(t, "35.15", quote.Total.StringFixed(2))
	require.NotNil(t, quote.ValidUntil)
}

func TestConvertDraftQuoteRejected(t *testing.T) {
	f := setup(t)

	quote := f.newQuote(t)
	_, err := f.svc.Convert(context.Background(), f.companyID, quote.ID)
	assert.ErrorIs(t, err, documentdomain.ErrNotConvertible)
}

func TestFullChainConversion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	quote := f.newQuote(t)
	f.setStatus(t, quote.ID, documentdomain.StatusSent)
	f.setStatus(t, quote.ID, documentdomain.StatusAccepted)

	order, err := f.svc.Convert(ctx, f.companyID, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, documentdomain.TypeOrder, order.Type)
	assert.Equal(t, documentdomain.StatusDraft, order.Status)
	assert.Equal(t, "ORD-000001", order.Number)
	require.NotNil(t, order.SourceID)
	assert.Equal(t, quote.ID, *order.SourceID)
	assert.Equal(t, quote.Total.StringFixed(2), order.Total.StringFixed(2))
	require.Len(t, order.Lines, 3)

	source, err := f.svc.Get(ctx, f.companyID, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, documentdomain.StatusConverted, source.Status)

	_, err = f.svc.Convert(ctx, f.companyID, quote.ID)
	assert.ErrorIs(t, err, documentdomain.ErrNotConvertible, "converted quote cannot convert twice")

	f.setStatus(t, order.ID, documentdomain.StatusConfirmed)
	delivery, err := f.svc.Convert(ctx, f.companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, documentdomain.TypeDelivery, delivery.Type)
	assert.Equal(t, documentdomain.StatusReady, delivery.Status)

	invoice, err := f.svc.Convert(ctx, f.companyID, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, documentdomain.TypeInvoice, invoice.Type)
	assert.Equal(t, documentdomain.StatusDraft, invoice.Status)
	require.NotNil(t, invoice.DueDate)

	_, err = f.svc.Convert(ctx, f.companyID, invoice.ID)
	assert.ErrorIs(t, err, documentdomain.ErrNotConvertible, "draft invoice must post before credit note")
}

func TestPostInvoiceBuildsJournal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	invoice, err := f.svc.Create(ctx, documentdomain.CreateRequest{
		CompanyID:  f.companyID,
		CustomerID: f.customerID,
		Type:       documentdomain.TypeInvoice,
		Lines: []documentdomain.LineInput{
			{Description: "consulting", Quantity: qty("10"), UnitPrice: qty("100"), TaxRate: qty("21")},
		},
	})
	require.NoError(t, err)

	posted, err := f.svc.PostInvoice(ctx, f.companyID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, documentdomain.StatusPosted, posted.Status)
	require.NotNil(t, posted.PostedJournalID)

	entry, err := f.journal.Get(ctx, f.companyID, *posted.PostedJournalID)
	require.NoError(t, err)
	assert.Equal(t, journaldomain.StatusPosted, entry.Status)
	require.Len(t, entry.Lines, 3)
	assert.True(t, entry.IsBalanced())

	debit, credit := entry.Totals()
	assert.Equal(t, "1210.00", debit.StringFixed(2))
	assert.Equal(t, "1210.00", credit.StringFixed(2))

	_, err = f.svc.PostInvoice(ctx, f.companyID, invoice.ID)
	assert.ErrorIs(t, err, documentdomain.ErrAlreadyPosted)

	// Posted and unpaid: the full total shows up as outstanding.
	standing, err := f.customers.CreditCheck(ctx, f.companyID, f.customerID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "1210.00", standing.Outstanding.StringFixed(2))

	creditNote, err := f.svc.Convert(ctx, f.companyID, posted.ID)
	require.NoError(t, err)
	assert.Equal(t, documentdomain.TypeCreditNote, creditNote.Type)

	postedNote, err := f.svc.PostInvoice(ctx, f.companyID, creditNote.ID)
	require.NoError(t, err)
	noteEntry, err := f.journal.Get(ctx, f.companyID, *postedNote.PostedJournalID)
	require.NoError(t, err)
	assert.True(t, noteEntry.IsBalanced())
	// Mirrored: receivable sits on the credit side now.
	var receivableCredit decimal.Decimal
	for _, line := range noteEntry.Lines {
		if line.Credit.IsPositive() && line.Credit.Equal(postedNote.Total) {
			receivableCredit = line.Credit
		}
	}
	assert.Equal(t, "1210.00", receivableCredit.StringFixed(2))
}

func TestCreditLimitBlocksCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	limit := qty("100.00")
	_, err := f.customers.Update(ctx, customerdomain.UpdateRequest{
		CompanyID: f.companyID, CustomerID: f.customerID, CreditLimit: &limit,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, documentdomain.CreateRequest{
		CompanyID:  f.companyID,
		CustomerID: f.customerID,
		Type:       documentdomain.TypeInvoice,
		Lines: []documentdomain.LineInput{
			{Description: "big job", Quantity: qty("1"), UnitPrice: qty("200")},
		},
	})
	assert.ErrorIs(t, err, customerdomain.ErrCreditLimitExceeded)
}

func TestMarkPaidClearsOutstanding(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	invoice, err := f.svc.Create(ctx, documentdomain.CreateRequest{
		CompanyID:  f.companyID,
		CustomerID: f.customerID,
		Type:       documentdomain.TypeInvoice,
		Lines: []documentdomain.LineInput{
			{Description: "work", Quantity: qty("1"), UnitPrice: qty("50")},
		},
	})
	require.NoError(t, err)

	_, err = f.svc.MarkPaid(ctx, f.companyID, invoice.ID)
	assert.ErrorIs(t, err, documentdomain.ErrNotPosted)

	_, err = f.svc.PostInvoice(ctx, f.companyID, invoice.ID)
	require.NoError(t, err)
	paid, err := f.svc.MarkPaid(ctx, f.companyID, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)

	standing, err := f.customers.CreditCheck(ctx, f.companyID, f.customerID, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, standing.Outstanding.IsZero())

	_, err = f.svc.MarkPaid(ctx, f.companyID, invoice.ID)
	assert.ErrorIs(t, err, documentdomain.ErrAlreadyPaid)
}

func TestExpireQuotes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	quote := f.newQuote(t)
	f.setStatus(t, quote.ID, documentdomain.StatusSent)

	count, err := f.svc.ExpireQuotes(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, count, "quote still within validity")

	count, err = f.svc.ExpireQuotes(ctx, time.Now().UTC().AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expired, err := f.svc.Get(ctx, f.companyID, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, documentdomain.StatusExpired, expired.Status)

	_, err = f.svc.Convert(ctx, f.companyID, quote.ID)
	assert.ErrorIs(t, err, documentdomain.ErrNotConvertible)
}
