package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) fiscalyeardomain.Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) CreateYear(ctx context.Context, tx *gorm.DB, year *fiscalyeardomain.FiscalYear, periods []fiscalyeardomain.Period) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Create(year).Error; err != nil {
		return err
	}
	if len(periods) == 0 {
		return nil
	}
	return conn.Create(&periods).Error
}

func (r *repository) FindYearByID(ctx context.Context, companyID, id snowflake.ID) (*fiscalyeardomain.FiscalYear, error) {
	var year fiscalyeardomain.FiscalYear
	err := r.db.WithContext(ctx).First(&year, "company_id = ? AND id = ?", companyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &year, nil
}

func (r *repository) ListYears(ctx context.Context, companyID snowflake.ID) ([]fiscalyeardomain.FiscalYear, error) {
	var years []fiscalyeardomain.FiscalYear
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("start_date ASC").
		Find(&years).Error; err != nil {
		return nil, err
	}
	return years, nil
}

func (r *repository) FindOverlappingYear(ctx context.Context, companyID snowflake.ID, start, end time.Time) (*fiscalyeardomain.FiscalYear, error) {
	var year fiscalyeardomain.FiscalYear
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND start_date <= ? AND end_date >= ?", companyID, end, start).
		First(&year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &year, nil
}

func (r *repository) UpdateYear(ctx context.Context, tx *gorm.DB, year *fiscalyeardomain.FiscalYear) error {
	return r.conn(tx).WithContext(ctx).Save(year).Error
}

func (r *repository) FindPeriodByID(ctx context.Context, id snowflake.ID) (*fiscalyeardomain.Period, error) {
	var period fiscalyeardomain.Period
	err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *repository) FindPeriodForDate(ctx context.Context, companyID snowflake.ID, date time.Time) (*fiscalyeardomain.Period, *fiscalyeardomain.FiscalYear, error) {
	var year fiscalyeardomain.FiscalYear
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND start_date <= ? AND end_date >= ?", companyID, date, date).
		First(&year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var period fiscalyeardomain.Period
	err = r.db.WithContext(ctx).
		Where("fiscal_year_id = ? AND start_date <= ? AND end_date >= ?", year.ID, date, date).
		First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &year, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &period, &year, nil
}

func (r *repository) ListPeriods(ctx context.Context, fiscalYearID snowflake.ID) ([]fiscalyeardomain.Period, error) {
	var periods []fiscalyeardomain.Period
	if err := r.db.WithContext(ctx).
		Where("fiscal_year_id = ?", fiscalYearID).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *repository) UpdatePeriod(ctx context.Context, tx *gorm.DB, period *fiscalyeardomain.Period) error {
	return r.conn(tx).WithContext(ctx).Save(period).Error
}
