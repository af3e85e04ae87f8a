package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) customerdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, customer *customerdomain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) FindByID(ctx context.Context, companyID, id snowflake.ID) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := r.db.WithContext(ctx).First(&customer, "company_id = ? AND id = ?", companyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, companyID snowflake.ID) ([]customerdomain.Customer, error) {
	var customers []customerdomain.Customer
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repository) Update(ctx context.Context, customer *customerdomain.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *repository) Receivables(ctx context.Context, companyID, customerID snowflake.ID, asOf time.Time) (customerdomain.Receivables, error) {
	var row struct {
		Outstanding decimal.Decimal
		Overdue     decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total), 0) AS outstanding,
		        COALESCE(SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? THEN total ELSE 0 END), 0) AS overdue
		 FROM sales_documents
		 WHERE company_id = ? AND customer_id = ?
		   AND type = 'invoice' AND status = 'posted' AND paid_at IS NULL`,
		asOf, companyID, customerID,
	).Scan(&row).Error
	if err != nil {
		return customerdomain.Receivables{}, err
	}
	return customerdomain.Receivables{Outstanding: row.Outstanding, Overdue: row.Overdue}, nil
}
