package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) seriesdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, series *seriesdomain.Series) error {
	return r.db.WithContext(ctx).Create(series).Error
}

func (r *repository) List(ctx context.Context, companyID snowflake.ID) ([]seriesdomain.Series, error) {
	var items []seriesdomain.Series
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("doc_type ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) LockForUpdate(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, docType string) (*seriesdomain.Series, error) {
	conn := tx
	if conn == nil {
		conn = r.db
	}

	var series seriesdomain.Series
	err := conn.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND doc_type = ?", companyID, docType).
		First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

func (r *repository) Update(ctx context.Context, tx *gorm.DB, series *seriesdomain.Series) error {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	return conn.WithContext(ctx).Save(series).Error
}
