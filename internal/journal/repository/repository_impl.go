package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	"github.com/fiskora/fiskora/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) journaldomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) Create(ctx context.Context, tx *gorm.DB, entry *journaldomain.JournalEntry) error {
	return r.conn(tx).WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*journaldomain.JournalEntry, error) {
	var entry journaldomain.JournalEntry
	err := r.conn(tx).WithContext(ctx).
		Preload("Lines").
		First(&entry, "company_id = ? AND id = ?", companyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context, req journaldomain.ListRequest) ([]journaldomain.JournalEntry, error) {
	stmt := r.db.WithContext(ctx).
		Model(&journaldomain.JournalEntry{}).
		Preload("Lines").
		Where("company_id = ?", req.CompanyID)

	if req.Status != nil {
		stmt = stmt.Where("status = ?", *req.Status)
	}
	if req.From != nil {
		stmt = stmt.Where("entry_date >= ?", *req.From)
	}
	if req.To != nil {
		stmt = stmt.Where("entry_date <= ?", *req.To)
	}
	if token := strings.TrimSpace(req.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, journaldomain.ErrInvalidPageToken
		}
		if cursor.CreatedAt != "" {
			before, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			if err != nil {
				return nil, journaldomain.ErrInvalidPageToken
			}
			stmt = stmt.Where("created_at < ?", before)
		}
	}

	pageSize := req.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	var entries []journaldomain.JournalEntry
	if err := stmt.Order("created_at DESC").Limit(pageSize + 1).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Update(ctx context.Context, tx *gorm.DB, entry *journaldomain.JournalEntry) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(entry).Error
}

func (r *repository) ReplaceLines(ctx context.Context, tx *gorm.DB, entryID snowflake.ID, lines []journaldomain.JournalLine) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("entry_id = ?", entryID).Delete(&journaldomain.JournalLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return conn.Create(&lines).Error
}

func (r *repository) CountByStatusInRange(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, status journaldomain.Status, from, to time.Time) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&journaldomain.JournalEntry{}).
		Where("company_id = ? AND status = ? AND entry_date >= ? AND entry_date <= ?", companyID, status, from, to).
		Count(&count).Error
	return count, err
}
