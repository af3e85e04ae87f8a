package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	companydomain "github.com/fiskora/fiskora/internal/company/domain"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
)

const defaultCompanyName = "Main"

type accountSeed struct {
	Code string
	Name string
	Type accountdomain.AccountType
}

// defaultChart is the minimal chart the posting paths depend on:
// receivables, tax payable, revenue, retained earnings, plus a cash and
// an expense account so the books are usable out of the box.
var defaultChart = []accountSeed{
	{Code: "1290", Name: "Retained earnings", Type: accountdomain.TypeEquity},
	{Code: "4300", Name: "Accounts receivable", Type: accountdomain.TypeAsset},
	{Code: "4770", Name: "Tax payable", Type: accountdomain.TypeLiability},
	{Code: "5700", Name: "Cash", Type: accountdomain.TypeAsset},
	{Code: "6000", Name: "Operating expenses", Type: accountdomain.TypeExpense},
	{Code: "7000", Name: "Revenue", Type: accountdomain.TypeIncome},
}

type seriesSeed struct {
	DocType string
	Prefix  string
}

var defaultSeries = []seriesSeed{
	{DocType: "journal", Prefix: "JRN"},
	{DocType: "quote", Prefix: "QUO"},
	{DocType: "order", Prefix: "ORD"},
	{DocType: "delivery", Prefix: "DLV"},
	{DocType: "invoice", Prefix: "INV"},
	{DocType: "credit_note", Prefix: "CRN"},
}

// EnsureDefaults seeds the default company with a usable chart of
// accounts and numbering series. Idempotent across restarts.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err := ensureCompanyTx(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureChartTx(ctx, tx, node, company.ID); err != nil {
			return err
		}
		return ensureSeriesTx(ctx, tx, node, company.ID)
	})
}

func ensureCompanyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*companydomain.Company, error) {
	var company companydomain.Company
	err := tx.WithContext(ctx).Where("code = ?", slug.Make(defaultCompanyName)).First(&company).Error
	if err == nil {
		return &company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	company = companydomain.Company{
		ID:        node.Generate(),
		Name:      defaultCompanyName,
		Code:      slug.Make(defaultCompanyName),
		Currency:  "EUR",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func ensureChartTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, companyID snowflake.ID) error {
	for _, seedAccount := range defaultChart {
		var existing accountdomain.Account
		err := tx.WithContext(ctx).
			Where("company_id = ? AND code = ?", companyID, seedAccount.Code).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		account := accountdomain.Account{
			ID:        node.Generate(),
			CompanyID: companyID,
			Code:      seedAccount.Code,
			Name:      seedAccount.Name,
			Type:      seedAccount.Type,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureSeriesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, companyID snowflake.ID) error {
	for _, seedSeries := range defaultSeries {
		var existing seriesdomain.Series
		err := tx.WithContext(ctx).
			Where("company_id = ? AND doc_type = ?", companyID, seedSeries.DocType).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		series := seriesdomain.Series{
			ID:         node.Generate(),
			CompanyID:  companyID,
			DocType:    seedSeries.DocType,
			Prefix:     seedSeries.Prefix,
			NextNumber: 1,
			Padding:    6,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.WithContext(ctx).Create(&series).Error; err != nil {
			return err
		}
	}
	return nil
}
