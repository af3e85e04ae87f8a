package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	"github.com/fiskora/fiskora/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) documentdomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) Create(ctx context.Context, tx *gorm.DB, doc *documentdomain.SalesDocument) error {
	return r.conn(tx).WithContext(ctx).Create(doc).Error
}

func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*documentdomain.SalesDocument, error) {
	var doc documentdomain.SalesDocument
	err := r.conn(tx).WithContext(ctx).
		Preload("Lines").
		First(&doc, "company_id = ? AND id = ?", companyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) List(ctx context.Context, req documentdomain.ListRequest) ([]documentdomain.SalesDocument, error) {
	stmt := r.db.WithContext(ctx).
		Model(&documentdomain.SalesDocument{}).
		Preload("Lines").
		Where("company_id = ?", req.CompanyID)

	if req.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *req.CustomerID)
	}
	if req.Type != nil {
		stmt = stmt.Where("type = ?", *req.Type)
	}
	if req.Status != nil {
		stmt = stmt.Where("status = ?", *req.Status)
	}

	if token := strings.TrimSpace(req.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, documentdomain.ErrInvalidPageToken
		}
		if cursor.CreatedAt != "" {
			before, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			if err != nil {
				return nil, documentdomain.ErrInvalidPageToken
			}
			stmt = stmt.Where("created_at < ?", before)
		}
	}

	pageSize := req.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	var docs []documentdomain.SalesDocument
	if err := stmt.Order("created_at DESC").Limit(pageSize + 1).Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) Update(ctx context.Context, tx *gorm.DB, doc *documentdomain.SalesDocument) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(doc).Error
}

func (r *repository) ExpireQuotes(ctx context.Context, now time.Time) ([]documentdomain.SalesDocument, error) {
	var quotes []documentdomain.SalesDocument
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ? AND valid_until IS NOT NULL AND valid_until < ?",
			documentdomain.TypeQuote, documentdomain.StatusSent, now).
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, nil
	}

	ids := make([]snowflake.ID, 0, len(quotes))
	for i := range quotes {
		ids = append(ids, quotes[i].ID)
		quotes[i].Status = documentdomain.StatusExpired
		quotes[i].UpdatedAt = now
	}
	err = r.db.WithContext(ctx).
		Model(&documentdomain.SalesDocument{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": documentdomain.StatusExpired, "updated_at": now}).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}
