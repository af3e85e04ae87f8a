package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/fiskora/fiskora/internal/company/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) companydomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, company *companydomain.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*companydomain.Company, error) {
	var company companydomain.Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*companydomain.Company, error) {
	var company companydomain.Company
	err := r.db.WithContext(ctx).First(&company, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repository) List(ctx context.Context) ([]companydomain.Company, error) {
	var companies []companydomain.Company
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *repository) Update(ctx context.Context, company *companydomain.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}
