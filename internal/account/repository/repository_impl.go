package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) accountdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, account *accountdomain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*accountdomain.Account, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}

	var account accountdomain.Account
	err := conn.WithContext(ctx).First(&account, "company_id = ? AND id = ?", companyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByCode(ctx context.Context, companyID snowflake.ID, code string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.WithContext(ctx).First(&account, "company_id = ? AND code = ?", companyID, code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) List(ctx context.Context, req accountdomain.ListRequest) ([]accountdomain.Account, error) {
	stmt := r.db.WithContext(ctx).
		Model(&accountdomain.Account{}).
		Where("company_id = ?", req.CompanyID)

	if req.Type != nil {
		stmt = stmt.Where("type = ?", *req.Type)
	}
	if req.OnlyActive {
		stmt = stmt.Where("is_active = ?", true)
	}

	var accounts []accountdomain.Account
	if err := stmt.Order("code ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) Update(ctx context.Context, account *accountdomain.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *repository) Balances(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, from, to time.Time) ([]accountdomain.AccountBalance, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}

	var balances []accountdomain.AccountBalance
	err := conn.WithContext(ctx).Raw(
		`SELECT a.id AS account_id, a.code, a.type,
		        COALESCE(SUM(l.debit - l.credit), 0) AS net
		 FROM accounts a
		 JOIN journal_lines l ON l.account_id = a.id
		 JOIN journal_entries e ON e.id = l.entry_id
		 WHERE a.company_id = ?
		   AND e.status = 'posted'
		   AND e.entry_date >= ? AND e.entry_date <= ?
		 GROUP BY a.id, a.code, a.type
		 ORDER BY a.code ASC`,
		companyID, from, to,
	).Scan(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}
