package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	closingdomain "github.com/fiskora/fiskora/internal/closing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) closingdomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) CreateRun(ctx context.Context, run *closingdomain.ClosingRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) FindRunByID(ctx context.Context, tx *gorm.DB, companyID, id snowflake.ID) (*closingdomain.ClosingRun, error) {
	var run closingdomain.ClosingRun
	err := r.conn(tx).WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		First(&run, "company_id = ? AND id = ?", companyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindActiveRunByYear(ctx context.Context, companyID, fiscalYearID snowflake.ID) (*closingdomain.ClosingRun, error) {
	var run closingdomain.ClosingRun
	err := r.db.WithContext(ctx).
		First(&run, "company_id = ? AND fiscal_year_id = ? AND status = ?",
			companyID, fiscalYearID, closingdomain.RunStatusRunning).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) ListRuns(ctx context.Context, companyID snowflake.ID) ([]closingdomain.ClosingRun, error) {
	var runs []closingdomain.ClosingRun
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *repository) UpdateRun(ctx context.Context, tx *gorm.DB, run *closingdomain.ClosingRun) error {
	return r.conn(tx).WithContext(ctx).Omit(clause.Associations).Save(run).Error
}

func (r *repository) UpdateStep(ctx context.Context, tx *gorm.DB, step *closingdomain.ClosingStep) error {
	return r.conn(tx).WithContext(ctx).Save(step).Error
}
